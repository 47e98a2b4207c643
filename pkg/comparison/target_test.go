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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vafast/thunderbench/pkg/executor"
	"github.com/vafast/thunderbench/pkg/executor/mocks"
)

// healthServer answers with 503 until it was hit failures times.
func healthServer(failures int64) (*httptest.Server, *int64) {
	hits := new(int64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(hits, 1) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	return server, hits
}

func fastProbe() *HTTPProbe {
	probe := NewHTTPProbe()
	probe.PollInterval = 5 * time.Millisecond
	return probe
}

func TestHTTPProbe(t *testing.T) {
	Convey("With probe polling every 5ms", t, func() {
		probe := fastProbe()

		Convey("When target becomes healthy after a few polls", func() {
			server, hits := healthServer(3)
			defer server.Close()
			target := Target{Name: "slow-start", BaseURL: server.URL, StartupTimeout: 5000}

			err := probe.WaitReady(context.Background(), target)

			Convey("It should wait until 2xx response", func() {
				So(err, ShouldBeNil)
				So(atomic.LoadInt64(hits), ShouldEqual, 4)
			})
		})

		Convey("When target never becomes healthy", func() {
			server, _ := healthServer(1 << 30)
			defer server.Close()
			target := Target{Name: "broken", BaseURL: server.URL, StartupTimeout: 100}

			err := probe.WaitReady(context.Background(), target)

			Convey("It should fail with unreachable target error after startup timeout", func() {
				So(IsTargetUnreachable(err), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "broken")
				So(err.Error(), ShouldContainSubstring, "503")
			})
		})

		Convey("When nothing listens on target address", func() {
			server, _ := healthServer(0)
			address := server.URL
			server.Close()

			err := probe.WaitReady(context.Background(), Target{Name: "gone", BaseURL: address, StartupTimeout: 50})
			So(IsTargetUnreachable(err), ShouldBeTrue)
		})

		Convey("When waiting is cancelled", func() {
			server, _ := healthServer(1 << 30)
			defer server.Close()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := probe.WaitReady(ctx, Target{Name: "cancelled", BaseURL: server.URL})

			Convey("It should return without waiting for startup timeout", func() {
				So(err, ShouldNotBeNil)
				So(IsTargetUnreachable(err), ShouldBeFalse)
			})
		})

		Convey("When target asks for warm-up requests", func() {
			server, hits := healthServer(0)
			defer server.Close()
			target := Target{Name: "warm", BaseURL: server.URL, HealthCheckPath: "health", WarmupRequests: 25}

			So(probe.Prepare(context.Background(), target), ShouldBeNil)

			Convey("Every warm-up request should reach the target after the health check", func() {
				So(atomic.LoadInt64(hits), ShouldEqual, 26)
			})
		})

		Convey("When warm-up requests fail", func() {
			server, _ := healthServer(1 << 30)
			defer server.Close()

			warmup := probe.Warmup(Target{Name: "failing", BaseURL: server.URL, WarmupRequests: 12})

			Convey("They should be counted as failed", func() {
				So(warmup.TotalRequests, ShouldEqual, 12)
				So(warmup.FailedRequests, ShouldEqual, 12)
				So(warmup.ErrorRate, ShouldEqual, 1)
			})
		})

		Convey("When neither target nor probe ask for warm-up", func() {
			So(probe.Warmup(Target{Name: "cold", Port: 1}).TotalRequests, ShouldEqual, 0)
		})
	})
}

func TestLauncher(t *testing.T) {
	Convey("With launcher over mocked executor", t, func() {
		server, _ := healthServer(0)
		defer server.Close()

		mockedExecutor := new(mocks.Executor)
		handle := new(mocks.TaskHandle)
		mockedExecutor.On("Name").Return("Mock Executor")
		launcher := NewLauncher(mockedExecutor, fastProbe())
		target := Target{Name: "server", Port: 3005, BaseURL: server.URL, Command: "./server --quiet"}

		Convey("When target starts listening", func() {
			mockedExecutor.On("Execute", "PORT=3005 ./server --quiet").Return(handle, nil).Once()
			handle.On("Status").Return(executor.RUNNING)
			handle.On("Stop").Return(nil).Once()
			handle.On("Clean").Return(nil).Once()
			handle.On("EraseOutput").Return(nil).Once()
			launcher.IsListening = func(address string, timeout time.Duration) bool {
				return address == target.Address()
			}

			So(launcher.Prepare(context.Background(), target), ShouldBeNil)
			So(launcher.Release(target), ShouldBeNil)

			Convey("Process should be stopped and cleaned once", func() {
				So(launcher.Release(target), ShouldBeNil)
				mockedExecutor.AssertExpectations(t)
				handle.AssertExpectations(t)
			})
		})

		Convey("When target never listens", func() {
			mockedExecutor.On("Execute", "PORT=3005 ./server --quiet").Return(handle, nil).Once()
			handle.On("Status").Return(executor.RUNNING)
			handle.On("Stop").Return(nil).Once()
			handle.On("Clean").Return(nil).Once()
			handle.On("EraseOutput").Return(nil).Once()
			launcher.IsListening = func(string, time.Duration) bool { return false }

			err := launcher.Prepare(context.Background(), target)

			Convey("It should be unreachable and already stopped", func() {
				So(IsTargetUnreachable(err), ShouldBeTrue)
				handle.AssertExpectations(t)
			})
		})

		Convey("When target has no command", func() {
			err := launcher.Prepare(context.Background(), Target{Name: "external", BaseURL: server.URL})

			Convey("It should be only probed", func() {
				So(err, ShouldBeNil)
				mockedExecutor.AssertNotCalled(t, "Execute", "")
			})
		})
	})
}
