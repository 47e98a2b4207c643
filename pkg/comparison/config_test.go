// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package comparison

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vafast/thunderbench/pkg/benchmark"
)

func TestConfig(t *testing.T) {
	Convey("When loading comparison file", t, func() {
		config, err := LoadConfig("testdata/comparison.yaml")
		So(err, ShouldBeNil)

		Convey("Scenarios and targets should be decoded", func() {
			So(config.Name, ShouldEqual, "hello-world")
			So(config.Scenarios, ShouldHaveLength, 2)
			So(config.Targets, ShouldHaveLength, 2)
			So(config.Targets[0].Port, ShouldEqual, 3001)
			So(config.Targets[0].HealthURL(), ShouldEqual, "http://localhost:3001/health")
			So(config.Targets[1].URL(), ShouldEqual, "http://10.0.0.5:8080")
		})

		Convey("Body should be decoded into JSON friendly map", func() {
			body, ok := config.Scenarios[1].Body.(map[string]interface{})
			So(ok, ShouldBeTrue)
			nested, ok := body["nested"].(map[string]interface{})
			So(ok, ShouldBeTrue)
			So(nested["count"], ShouldEqual, 3)
		})

		Convey("Benchmark of a target should run all scenarios in one parallel group", func() {
			built := BenchmarkConfig(config, config.Targets[1])
			So(built.Name, ShouldEqual, "hello-world - remote")
			So(built.Groups, ShouldHaveLength, 1)

			group := built.Groups[0]
			So(group.Name, ShouldEqual, "remote-test")
			So(group.HTTP.BaseURL, ShouldEqual, "http://10.0.0.5:8080")
			So(group.HTTP.Headers["Content-Type"], ShouldEqual, "application/json")
			So(group.ExecutionMode, ShouldEqual, benchmark.Parallel)
			So(group.Timeout, ShouldEqual, 10)
			So(group.LatencyEnabled(), ShouldBeTrue)
			So(group.Threads, ShouldEqual, 2)
			So(group.Connections, ShouldEqual, 50)
			So(group.Duration, ShouldEqual, 10)
			So(group.Tests[1].Request.URL, ShouldEqual, "/json")
			So(group.Tests[1].Weight, ShouldEqual, 30)
			So(benchmark.Validate(built), ShouldBeNil)
		})
	})

	Convey("When weights of scenarios do not sum up to 100", t, func() {
		config := Config{
			Name:        "bad",
			Threads:     1,
			Connections: 1,
			Duration:    1,
			Scenarios: []Scenario{
				{Name: "a", Method: "GET", Path: "/a", Weight: 50},
				{Name: "b", Method: "GET", Path: "/b", Weight: 40},
			},
		}
		err := Validate(config)

		Convey("Validation should fail with configuration error", func() {
			So(benchmark.IsConfigurationError(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "90")
		})
	})

	Convey("When comparison file does not exist", t, func() {
		_, err := LoadConfig("testdata/missing.yaml")
		So(err, ShouldNotBeNil)
	})
}

func TestParseTarget(t *testing.T) {
	Convey("When parsing target given as name=url", t, func() {
		Convey("Port should be taken from url", func() {
			target, err := ParseTarget("gin=http://127.0.0.1:3002/")
			So(err, ShouldBeNil)
			So(target.Name, ShouldEqual, "gin")
			So(target.Port, ShouldEqual, 3002)
			So(target.URL(), ShouldEqual, "http://127.0.0.1:3002")
			So(target.Address(), ShouldEqual, "127.0.0.1:3002")
			So(target.HealthURL(), ShouldEqual, "http://127.0.0.1:3002/")
		})

		Convey("Url without port should use scheme default address", func() {
			target, err := ParseTarget("nginx=http://example.com")
			So(err, ShouldBeNil)
			So(target.Port, ShouldEqual, 0)
			So(target.Address(), ShouldEqual, "example.com:80")
		})

		Convey("Malformed values should be rejected", func() {
			for _, value := range []string{"gin", "=http://a:1", "gin=", "gin=localhost:3000"} {
				_, err := ParseTarget(value)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
