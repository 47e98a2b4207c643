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
	"time"

	samples "github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// DetailedStats is the statistics shape merged at every aggregation level (case, group, run).
// Latencies are in milliseconds, rates are fractions in [0,1], sizes are in bytes.
type DetailedStats struct {
	TotalRequests      int64 `json:"totalRequests"`
	SuccessfulRequests int64 `json:"successfulRequests"`
	FailedRequests     int64 `json:"failedRequests"`
	TimeoutRequests    int64 `json:"timeoutRequests"`
	SlowRequests       int64 `json:"slowRequests"`

	AverageResponseTime float64 `json:"averageResponseTime"`
	MinResponseTime     float64 `json:"minResponseTime"`
	MaxResponseTime     float64 `json:"maxResponseTime"`
	P50ResponseTime     float64 `json:"p50ResponseTime"`
	P90ResponseTime     float64 `json:"p90ResponseTime"`
	P95ResponseTime     float64 `json:"p95ResponseTime"`
	P99ResponseTime     float64 `json:"p99ResponseTime"`

	RequestsPerSecond float64 `json:"requestsPerSecond"`
	ErrorRate         float64 `json:"errorRate"`
	TimeoutRate       float64 `json:"timeoutRate"`
	SlowRate          float64 `json:"slowRate"`

	TotalRequestSize  int64 `json:"totalRequestSize"`
	TotalResponseSize int64 `json:"totalResponseSize"`
}

// RequestSample is the outcome of a single HTTP request.
type RequestSample struct {
	Name         string    `json:"name"`
	Success      bool      `json:"success"`
	ResponseTime float64   `json:"responseTime"`
	StatusCode   int       `json:"statusCode,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	RequestSize  int64     `json:"requestSize,omitempty"`
	ResponseSize int64     `json:"responseSize,omitempty"`
	IsTimeout    bool      `json:"isTimeout,omitempty"`
	IsSlow       bool      `json:"isSlow,omitempty"`
}

// Round rounds value half away from zero to given number of decimal places.
func Round(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}

// ratio returns part/total or 0 when total is 0.
func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// Calculate computes statistics of raw request samples. Zero start means that
// throughput cannot be derived and RequestsPerSecond stays 0.
func Calculate(requests []RequestSample, start time.Time) DetailedStats {
	if len(requests) == 0 {
		return DetailedStats{}
	}

	var result DetailedStats
	responseTimes := make(samples.Float64Data, 0, len(requests))
	end := requests[0].Timestamp
	for _, request := range requests {
		responseTimes = append(responseTimes, request.ResponseTime)
		if request.Success {
			result.SuccessfulRequests++
		}
		if request.IsTimeout {
			result.TimeoutRequests++
		}
		if request.IsSlow {
			result.SlowRequests++
		}
		result.TotalRequestSize += request.RequestSize
		result.TotalResponseSize += request.ResponseSize
		if request.Timestamp.After(end) {
			end = request.Timestamp
		}
	}

	result.TotalRequests = int64(len(requests))
	result.FailedRequests = result.TotalRequests - result.SuccessfulRequests

	// Errors are impossible here: data is not empty.
	result.AverageResponseTime, _ = responseTimes.Mean()
	result.MinResponseTime, _ = responseTimes.Min()
	result.MaxResponseTime, _ = responseTimes.Max()

	result.P50ResponseTime = Percentile(responseTimes, 50)
	result.P90ResponseTime = Percentile(responseTimes, 90)
	result.P95ResponseTime = Percentile(responseTimes, 95)
	result.P99ResponseTime = Percentile(responseTimes, 99)

	result.ErrorRate = ratio(result.FailedRequests, result.TotalRequests)
	result.TimeoutRate = ratio(result.TimeoutRequests, result.TotalRequests)
	result.SlowRate = ratio(result.SlowRequests, result.TotalRequests)

	if !start.IsZero() {
		if elapsed := end.Sub(start).Seconds(); elapsed > 0 {
			result.RequestsPerSecond = float64(result.TotalRequests) / elapsed
		}
	}

	return result
}
