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

package stats

import (
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPercentile(t *testing.T) {
	Convey("While computing percentiles", t, func() {
		Convey("Empty input should give 0", func() {
			So(Percentile(nil, 50), ShouldEqual, 0)
			So(Percentile([]float64{}, 99), ShouldEqual, 0)
		})

		Convey("Single element should be returned for every percentile", func() {
			So(Percentile([]float64{42}, 90), ShouldEqual, 42)
			So(Percentile([]float64{42}, 0), ShouldEqual, 42)
		})

		Convey("Median of 10..100 should be interpolated to 55", func() {
			values := []float64{100, 90, 80, 70, 60, 50, 40, 30, 20, 10}
			So(Percentile(values, 50), ShouldEqual, 55)

			Convey("And input should stay unsorted", func() {
				So(values[0], ShouldEqual, 100)
			})
		})

		Convey("Percentile out of range should be clamped", func() {
			values := []float64{1, 2, 3, 4, 5}
			So(Percentile(values, -10), ShouldEqual, 1)
			So(Percentile(values, 150), ShouldEqual, 5)
			So(Percentile(values, math.NaN()), ShouldEqual, 1)
		})

		Convey("Equal values should give the same value", func() {
			So(Percentile([]float64{100, 100, 100}, 50), ShouldEqual, 100)
		})

		Convey("Integral rank should return the element", func() {
			So(Percentile([]float64{1, 2, 3, 4, 5}, 50), ShouldEqual, 3)
			So(Percentile([]float64{1, 2, 3, 4, 5}, 100), ShouldEqual, 5)
			So(Percentile([]float64{1, 2, 3, 4, 5}, 0), ShouldEqual, 1)
		})

		Convey("Interpolated value should be rounded to 2 decimal places", func() {
			So(Percentile([]float64{1, 2}, 33.333), ShouldEqual, 1.33)
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Round should keep requested number of decimal places", t, func() {
		So(Round(1.005, 2), ShouldEqual, 1.01)
		So(Round(2.344, 2), ShouldEqual, 2.34)
		So(Round(99.5, 0), ShouldEqual, 100)
	})
}

func TestCalculate(t *testing.T) {
	Convey("Calculating statistics of no samples should give empty statistics", t, func() {
		So(Calculate(nil, time.Now()), ShouldResemble, DetailedStats{})
	})

	Convey("Calculating statistics of samples", t, func() {
		start := time.Unix(1000, 0)
		requests := []RequestSample{
			{Name: "a", Success: true, ResponseTime: 10, Timestamp: start.Add(500 * time.Millisecond), RequestSize: 10, ResponseSize: 100},
			{Name: "a", Success: true, ResponseTime: 20, Timestamp: start.Add(1 * time.Second), RequestSize: 10, ResponseSize: 100, IsSlow: true},
			{Name: "b", Success: false, ResponseTime: 30, Timestamp: start.Add(1500 * time.Millisecond), IsTimeout: true},
			{Name: "b", Success: true, ResponseTime: 40, Timestamp: start.Add(2 * time.Second), RequestSize: 10, ResponseSize: 100},
		}

		result := Calculate(requests, start)

		So(result.TotalRequests, ShouldEqual, 4)
		So(result.SuccessfulRequests, ShouldEqual, 3)
		So(result.FailedRequests, ShouldEqual, 1)
		So(result.TimeoutRequests, ShouldEqual, 1)
		So(result.SlowRequests, ShouldEqual, 1)
		So(result.AverageResponseTime, ShouldEqual, 25)
		So(result.MinResponseTime, ShouldEqual, 10)
		So(result.MaxResponseTime, ShouldEqual, 40)
		So(result.P50ResponseTime, ShouldEqual, 25)
		So(result.P90ResponseTime, ShouldEqual, 37)
		So(result.ErrorRate, ShouldEqual, 0.25)
		So(result.TimeoutRate, ShouldEqual, 0.25)
		So(result.SlowRate, ShouldEqual, 0.25)
		So(result.TotalRequestSize, ShouldEqual, 30)
		So(result.TotalResponseSize, ShouldEqual, 300)
		So(result.RequestsPerSecond, ShouldEqual, 2)

		Convey("Without start time throughput should not be computed", func() {
			So(Calculate(requests, time.Time{}).RequestsPerSecond, ShouldEqual, 0)
		})
	})
}

func TestFromCase(t *testing.T) {
	Convey("Case result should be converted into statistics with rates", t, func() {
		result := CaseResult{
			Name:               "list",
			TotalRequests:      200,
			SuccessfulRequests: 190,
			FailedRequests:     10,
			TimeoutCount:       4,
			SlowRequests:       20,
			RequestsPerSecond:  100,
			Latency:            LatencyStats{Avg: 2, Min: 2, Max: 9, P50: 1.5, P90: 3, P95: 4, P99: 8},
			BytesTransferred:   4096,
		}

		converted := FromCase(result)
		So(converted.TotalRequests, ShouldEqual, 200)
		So(converted.ErrorRate, ShouldEqual, 0.05)
		So(converted.TimeoutRate, ShouldEqual, 0.02)
		So(converted.SlowRate, ShouldEqual, 0.1)
		So(converted.MinResponseTime, ShouldEqual, 2)
		So(converted.P99ResponseTime, ShouldEqual, 8)
		So(converted.TotalResponseSize, ShouldEqual, 4096)
		So(converted.RequestsPerSecond, ShouldEqual, 100)
	})

	Convey("Socket errors should be summed", t, func() {
		So(SocketErrors{Connect: 1, Read: 2, Write: 3, Timeout: 4}.Total(), ShouldEqual, 10)
	})
}
