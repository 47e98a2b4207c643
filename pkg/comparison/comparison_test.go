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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/workloads/wrk"
	"github.com/vafast/thunderbench/pkg/workloads/wrk/mocks"
)

func wrkOutput(requests int, rps float64) string {
	return fmt.Sprintf(`Running 1s test @ http://127.0.0.1:3000/
  1 threads and 1 connections
  Thread Stats   Avg      Stdev     Max   +/- Stdev
    Latency     2.00ms    1.00ms  20.00ms   90.00%%
  Latency Distribution
     50%%    1.00ms
     75%%    2.00ms
     90%%    4.00ms
     99%%   10.00ms
  %d requests in 1.00s, 1.00MB read
Requests/sec: %.2f
Transfer/sec:      1.00MB
`, requests, rps)
}

func onTarget(port int) interface{} {
	return mock.MatchedBy(func(request wrk.Request) bool {
		return strings.Contains(request.URL, fmt.Sprintf(":%d/", port))
	})
}

// fakeLifecycle records calls and fails Prepare of chosen targets.
type fakeLifecycle struct {
	failures map[string]error
	prepared []string
	released []string
}

func (f *fakeLifecycle) Prepare(ctx context.Context, target Target) error {
	f.prepared = append(f.prepared, target.Name)
	return f.failures[target.Name]
}

func (f *fakeLifecycle) Release(target Target) error {
	f.released = append(f.released, target.Name)
	return nil
}

func comparisonConfig() Config {
	return Config{
		Name:        "hello",
		Threads:     1,
		Connections: 10,
		Duration:    1,
		Scenarios: []Scenario{
			{Name: "text", Method: "GET", Path: "/", Weight: 100},
		},
	}
}

func TestOrchestrator(t *testing.T) {
	Convey("With three targets and mocked load generator", t, func() {
		worker := new(mocks.Worker)
		worker.On("CheckAvailability").Return("4.2.0", nil)
		lifecycle := &fakeLifecycle{failures: map[string]error{}}
		orchestrator := NewOrchestrator(comparisonConfig(), worker, lifecycle)
		orchestrator.WorkspaceRoot = t.TempDir()
		targets := []Target{
			{Name: "slow", Port: 3001},
			{Name: "fast", Port: 3002},
			{Name: "medium", Port: 3003},
		}

		Convey("When every target is benchmarked", func() {
			worker.On("Invoke", onTarget(3001)).Return(wrkOutput(1000, 1000), nil).Once()
			worker.On("Invoke", onTarget(3002)).Return(wrkOutput(4000, 4000), nil).Once()
			worker.On("Invoke", onTarget(3003)).Return(wrkOutput(3000, 3000.5), nil).Once()
			var engines []string
			orchestrator.OnEngine = func(target Target, engine *benchmark.Engine) {
				engines = append(engines, target.Name)
			}

			result, err := orchestrator.Run(context.Background(), targets)
			So(err, ShouldBeNil)

			Convey("Targets should be benchmarked one by one in given order", func() {
				So(engines, ShouldResemble, []string{"slow", "fast", "medium"})
				So(lifecycle.prepared, ShouldResemble, []string{"slow", "fast", "medium"})
				So(lifecycle.released, ShouldResemble, []string{"slow", "fast", "medium"})
				So(result.Targets, ShouldHaveLength, 3)
				So(result.Targets[1].URL, ShouldEqual, "http://localhost:3002")
				So(result.Targets[1].Result.Name, ShouldEqual, "hello - fast")
				So(result.Failures, ShouldBeEmpty)
				worker.AssertExpectations(t)
			})

			Convey("Ranking should be ordered by throughput relative to the fastest", func() {
				So(result.Ranking, ShouldHaveLength, 3)
				So(result.Ranking[0].Name, ShouldEqual, "fast")
				So(result.Ranking[0].Rank, ShouldEqual, 1)
				So(result.Ranking[0].RelativePerformance, ShouldEqual, 100)
				So(result.Ranking[1].Name, ShouldEqual, "medium")
				So(result.Ranking[1].RPS, ShouldEqual, 3000.5)
				So(result.Ranking[1].RelativePerformance, ShouldEqual, 75)
				So(result.Ranking[2].Name, ShouldEqual, "slow")
				So(result.Ranking[2].RelativePerformance, ShouldEqual, 25)
			})
		})

		Convey("When one target is unreachable", func() {
			lifecycle.failures["fast"] = &TargetUnreachableError{Target: "fast", URL: "http://localhost:3002/"}
			worker.On("Invoke", onTarget(3001)).Return(wrkOutput(1000, 1000), nil).Once()
			worker.On("Invoke", onTarget(3003)).Return(wrkOutput(3000, 3000), nil).Once()

			result, err := orchestrator.Run(context.Background(), targets)

			Convey("Other targets should still be benchmarked and ranked", func() {
				So(err, ShouldBeNil)
				So(result.Ranking, ShouldHaveLength, 2)
				So(result.Ranking[0].Name, ShouldEqual, "medium")
				So(result.Failures, ShouldHaveLength, 1)
				So(result.Failures[0].Name, ShouldEqual, "fast")
				worker.AssertNotCalled(t, "Invoke", onTarget(3002))
			})
		})

		Convey("When every target is unreachable", func() {
			for _, target := range targets {
				lifecycle.failures[target.Name] = &TargetUnreachableError{Target: target.Name}
			}
			result, err := orchestrator.Run(context.Background(), targets)

			So(result, ShouldBeNil)
			So(err, ShouldNotBeNil)
		})

		Convey("When load generator fails on a target", func() {
			worker.On("Invoke", onTarget(3001)).Return("", &wrk.WorkerExecutionError{ExitCode: 1}).Once()

			result, err := orchestrator.Run(context.Background(), targets)

			Convey("Comparison should fail and the target should be released", func() {
				So(result, ShouldBeNil)
				So(wrk.IsWorkerExecution(err), ShouldBeTrue)
				So(lifecycle.released, ShouldResemble, []string{"slow"})
			})
		})

		Convey("When preparation fails for other reason", func() {
			lifecycle.failures["slow"] = errors.New("cannot start")
			_, err := orchestrator.Run(context.Background(), targets)

			So(err, ShouldNotBeNil)
			So(lifecycle.prepared, ShouldResemble, []string{"slow"})
		})

		Convey("When targets are invalid", func() {
			for _, invalid := range [][]Target{
				nil,
				{{Name: "a", Port: 1}, {Name: "a", Port: 2}},
				{{Name: "", Port: 1}},
				{{Name: "a"}},
			} {
				_, err := orchestrator.Run(context.Background(), invalid)
				So(benchmark.IsConfigurationError(err), ShouldBeTrue)
			}
			So(lifecycle.prepared, ShouldBeEmpty)
		})

		Convey("When comparison is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := orchestrator.Run(ctx, targets)

			So(errors.Cause(err), ShouldEqual, context.Canceled)
			So(lifecycle.prepared, ShouldBeEmpty)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("When no target has throughput", t, func() {
		ranking := Rank([]TargetResult{{Name: "a"}, {Name: "b"}})

		Convey("Order should be kept and relative performance should be 0", func() {
			So(ranking[0].Name, ShouldEqual, "a")
			So(ranking[1].Name, ShouldEqual, "b")
			So(ranking[0].RelativePerformance, ShouldEqual, 0)
		})
	})

	Convey("When there are no targets", t, func() {
		So(Rank(nil), ShouldBeEmpty)
	})
}

func TestSummarize(t *testing.T) {
	Convey("When summarizing overall statistics", t, func() {
		result := &benchmark.BenchmarkResult{}
		result.OverallStats.TotalRequests = 3
		result.OverallStats.FailedRequests = 1
		result.OverallStats.ErrorRate = 1.0 / 3
		result.OverallStats.AverageResponseTime = 1.23456
		result.OverallStats.P99ResponseTime = 9.999
		result.OverallStats.TotalResponseSize = 2048

		summary := Summarize(result)

		Convey("Values should be rounded and error rate should be a percentage", func() {
			So(summary.AvgLatency, ShouldEqual, 1.23)
			So(summary.P99Latency, ShouldEqual, 10)
			So(summary.ErrorRate, ShouldEqual, 33.33)
			So(summary.TransferTotal, ShouldEqual, 2048)
		})
	})
}
