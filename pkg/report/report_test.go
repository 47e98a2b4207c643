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

package report

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/comparison"
	"github.com/vafast/thunderbench/pkg/stats"
)

func fixedStorage(t *testing.T) Storage {
	storage := NewStorage(t.TempDir())
	storage.Version = "test"
	storage.now = func() time.Time {
		return time.Date(2024, time.March, 5, 7, 8, 9, 0, time.Local)
	}
	return storage
}

func benchmarkFixture() (*benchmark.BenchmarkResult, benchmark.BenchmarkConfig) {
	config := benchmark.BenchmarkConfig{
		Name:        "api",
		Description: "Users service",
		Groups: []benchmark.TestGroupConfig{{
			Name:          "users",
			Threads:       2,
			Connections:   20,
			Duration:      5,
			ExecutionMode: benchmark.Sequential,
			Delay:         500,
			Tests: []benchmark.ApiTestConfig{
				{Name: "list", Weight: 60, Request: benchmark.RequestConfig{Method: "GET", URL: "/users"}},
				{Name: "create", Weight: 40, Request: benchmark.RequestConfig{Method: "POST", URL: "/users"}},
			},
		}},
	}
	overall := stats.DetailedStats{TotalRequests: 100, SuccessfulRequests: 100, RequestsPerSecond: 20}
	result := &benchmark.BenchmarkResult{
		Name:       "api",
		DurationMs: 5000,
		Groups: []benchmark.GroupResult{{
			Name:  "users",
			State: benchmark.GroupCompleted,
			Stats: overall,
			Cases: []stats.CaseResult{{Name: "list", TotalRequests: 60}, {Name: "create", TotalRequests: 40}},
		}},
		OverallStats: overall,
	}
	return result, config
}

func TestStorage(t *testing.T) {
	Convey("With storage using fixed clock", t, func() {
		storage := fixedStorage(t)

		Convey("When saving benchmark result", func() {
			result, config := benchmarkFixture()
			dir, err := storage.Save(result, config)
			So(err, ShouldBeNil)

			Convey("Directory should be named after timestamp", func() {
				So(dir, ShouldEqual, filepath.Join(storage.BaseDir, "2024-03-05_07-08-09"))
			})

			Convey("report.json should hold metadata, configuration and result", func() {
				content, err := ioutil.ReadFile(filepath.Join(dir, "report.json"))
				So(err, ShouldBeNil)

				var saved BenchmarkReport
				So(json.Unmarshal(content, &saved), ShouldBeNil)
				So(saved.Metadata.Timestamp, ShouldEqual, "2024-03-05_07-08-09")
				So(saved.Metadata.TotalGroups, ShouldEqual, 1)
				So(saved.Metadata.TotalTests, ShouldEqual, 2)
				So(saved.Metadata.Tool, ShouldEqual, "wrk")
				So(saved.Config.Groups[0].Tests[1].Name, ShouldEqual, "create")
				So(saved.Result.OverallStats.TotalRequests, ShouldEqual, 100)
				So(saved.Result.Groups[0].Cases, ShouldHaveLength, 2)
			})

			Convey("report.md should describe groups and cases", func() {
				content, err := ioutil.ReadFile(filepath.Join(dir, "report.md"))
				So(err, ShouldBeNil)
				markdown := string(content)
				So(markdown, ShouldStartWith, "# api\n")
				So(markdown, ShouldContainSubstring, "Users service")
				So(markdown, ShouldContainSubstring, "Mode: sequential | threads: 2 | connections: 20 | duration: 5s | delay: 500ms")
				So(markdown, ShouldContainSubstring, "| create")
				So(markdown, ShouldContainSubstring, "60%")
				So(markdown, ShouldContainSubstring, "## Environment")
			})
		})

		Convey("When saving comparison result", func() {
			result := &comparison.Result{
				Name:   "frameworks",
				Config: comparison.Config{Threads: 4, Connections: 100, Duration: 30},
				Targets: []comparison.TargetResult{
					{Name: "fast", URL: "http://localhost:3001", Summary: comparison.Summary{RequestsPerSecond: 2000}},
					{Name: "slow", URL: "http://localhost:3002", Summary: comparison.Summary{RequestsPerSecond: 1000}},
				},
				Ranking: []comparison.RankingEntry{
					{Rank: 1, Name: "fast", RPS: 2000, RelativePerformance: 100},
					{Rank: 2, Name: "slow", RPS: 1000, RelativePerformance: 50},
				},
				Failures: []comparison.Failure{{Name: "down", Error: "unreachable"}},
			}
			dir, err := storage.SaveComparison(result)
			So(err, ShouldBeNil)

			Convey("comparison.json should hold ranking", func() {
				content, err := ioutil.ReadFile(filepath.Join(dir, "comparison.json"))
				So(err, ShouldBeNil)

				var saved ComparisonReport
				So(json.Unmarshal(content, &saved), ShouldBeNil)
				So(saved.Result.Ranking, ShouldHaveLength, 2)
				So(saved.Result.Targets[1].Name, ShouldEqual, "slow")
			})

			Convey("comparison.md should show ranking, speedup and failures", func() {
				content, err := ioutil.ReadFile(filepath.Join(dir, "comparison.md"))
				So(err, ShouldBeNil)
				markdown := string(content)
				So(markdown, ShouldContainSubstring, "Threads: 4 | connections: 100 | duration: 30s per target.")
				So(markdown, ShouldContainSubstring, "fast is 2.00x faster than slow.")
				So(markdown, ShouldContainSubstring, "- **down**: unreachable")
				So(markdown, ShouldContainSubstring, "http://localhost:3002")
			})
		})

		Convey("When base directory cannot be created", func() {
			file := filepath.Join(storage.BaseDir, "file")
			So(ioutil.WriteFile(file, []byte("x"), 0644), ShouldBeNil)
			storage.BaseDir = file
			result, config := benchmarkFixture()

			_, err := storage.Save(result, config)
			So(err, ShouldNotBeNil)
		})
	})
}
