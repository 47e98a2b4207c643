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

package wrk

import (
	"io/ioutil"
	"path"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func readFixture(name string) string {
	output, err := ioutil.ReadFile(path.Join("testdata", name))
	So(err, ShouldBeNil)
	return string(output)
}

func TestParse(t *testing.T) {
	Convey("When parsing full wrk report with latency distribution", t, func() {
		result, err := Parse(readFixture("full_output"))
		So(err, ShouldBeNil)

		Convey("Request counts and errors should be extracted", func() {
			So(result.TotalRequests, ShouldEqual, 181385)
			So(result.SocketErrors.Read, ShouldEqual, 3)
			So(result.SocketErrors.Timeout, ShouldEqual, 5)
			So(result.NonSuccessResponses, ShouldEqual, 12)
			So(result.TimeoutCount, ShouldEqual, 5)
			So(result.FailedRequests, ShouldEqual, 20)
			So(result.SuccessfulRequests, ShouldEqual, 181365)
		})

		Convey("Duration, throughput and transfer should be extracted", func() {
			So(result.DurationSeconds, ShouldAlmostEqual, 10.01, 1e-9)
			So(result.RequestsPerSecond, ShouldEqual, 18121.15)
			So(result.BytesTransferred, ShouldEqual, 27346862)
			So(result.TransferPerSecond, ShouldAlmostEqual, 2736783.36, 1e-3)
		})

		Convey("Latencies should be converted to milliseconds", func() {
			So(result.Latency.Avg, ShouldAlmostEqual, 0.63591, 1e-9)
			So(result.Latency.Min, ShouldEqual, result.Latency.Avg)
			So(result.Latency.Stdev, ShouldAlmostEqual, 0.89, 1e-9)
			So(result.Latency.Max, ShouldAlmostEqual, 12.92, 1e-9)
			So(result.Latency.P50, ShouldAlmostEqual, 0.491, 1e-9)
			So(result.Latency.P75, ShouldAlmostEqual, 0.687, 1e-9)
			So(result.Latency.P90, ShouldAlmostEqual, 0.92, 1e-9)
			So(result.Latency.P99, ShouldAlmostEqual, 4.99, 1e-9)
		})

		Convey("Unreported 95th percentile should be interpolated between 90th and 99th", func() {
			So(result.Latency.P95, ShouldAlmostEqual, 0.92+(4.99-0.92)*5/9, 1e-9)
		})
	})

	Convey("When parsing report without latency distribution", t, func() {
		result, err := Parse(readFixture("no_distribution"))
		So(err, ShouldBeNil)

		So(result.TotalRequests, ShouldEqual, 2500)
		So(result.FailedRequests, ShouldEqual, 0)
		So(result.SuccessfulRequests, ShouldEqual, 2500)
		So(result.BytesTransferred, ShouldEqual, 524288)

		Convey("Percentiles should be derived from average and maximum", func() {
			So(result.Latency.P50, ShouldAlmostEqual, 2, 1e-9)
			So(result.Latency.P75, ShouldAlmostEqual, 6, 1e-9)
			So(result.Latency.P90, ShouldAlmostEqual, 8.4, 1e-9)
			So(result.Latency.P95, ShouldAlmostEqual, 9.2, 1e-9)
			So(result.Latency.P99, ShouldAlmostEqual, 10, 1e-9)
		})
	})

	Convey("When parsing report with total requests line only", t, func() {
		result, err := Parse(readFixture("requests_only"))
		So(err, ShouldBeNil)

		Convey("Throughput should be derived from duration and nothing should be undefined", func() {
			So(result.TotalRequests, ShouldEqual, 1000)
			So(result.RequestsPerSecond, ShouldEqual, 500)
			So(result.TransferPerSecond, ShouldEqual, 524288)
			So(result.Latency.P50, ShouldEqual, 0)
			So(result.Latency.P99, ShouldEqual, 0)
		})
	})

	Convey("When total requests line is missing", t, func() {
		_, err := Parse(readFixture("no_requests"))

		Convey("UnparsableOutputError should be returned", func() {
			So(err, ShouldNotBeNil)
			So(IsUnparsableOutput(err), ShouldBeTrue)
		})
	})

	Convey("When output is empty parsing should fail", t, func() {
		_, err := Parse("")
		So(IsUnparsableOutput(err), ShouldBeTrue)
	})
}

func TestUnits(t *testing.T) {
	Convey("Time units should be converted to milliseconds", t, func() {
		for value, expected := range map[string]float64{
			"500.00us": 0.5,
			"1.50ms":   1.5,
			"2.00s":    2000,
			"1.00m":    60000,
		} {
			converted, err := parseMilliseconds(value)
			So(err, ShouldBeNil)
			So(converted, ShouldAlmostEqual, expected, 1e-9)
		}

		_, err := parseMilliseconds("1.00parsec")
		So(err, ShouldNotBeNil)
	})

	Convey("Size units should be converted to bytes", t, func() {
		for value, expected := range map[string]float64{
			"100.00B": 100,
			"1.00KB":  1024,
			"2.00MB":  2 * 1024 * 1024,
			"1.00GB":  1024 * 1024 * 1024,
		} {
			converted, err := parseBytes(value)
			So(err, ShouldBeNil)
			So(converted, ShouldEqual, expected)
		}
	})
}
