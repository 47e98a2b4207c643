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
	"sort"

	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/stats"
)

// Summary is a rounded digest of target's overall statistics. Latencies are in
// milliseconds, ErrorRate is a percentage.
type Summary struct {
	TotalRequests      int64   `json:"totalRequests"`
	SuccessfulRequests int64   `json:"successfulRequests"`
	FailedRequests     int64   `json:"failedRequests"`
	RequestsPerSecond  float64 `json:"requestsPerSecond"`
	AvgLatency         float64 `json:"avgLatency"`
	P50Latency         float64 `json:"p50Latency"`
	P95Latency         float64 `json:"p95Latency"`
	P99Latency         float64 `json:"p99Latency"`
	MaxLatency         float64 `json:"maxLatency"`
	ErrorRate          float64 `json:"errorRate"`
	TransferTotal      int64   `json:"transferTotal"`
}

// Summarize digests overall statistics of a benchmark.
func Summarize(result *benchmark.BenchmarkResult) Summary {
	overall := result.OverallStats
	return Summary{
		TotalRequests:      overall.TotalRequests,
		SuccessfulRequests: overall.SuccessfulRequests,
		FailedRequests:     overall.FailedRequests,
		RequestsPerSecond:  stats.Round(overall.RequestsPerSecond, 2),
		AvgLatency:         stats.Round(overall.AverageResponseTime, 2),
		P50Latency:         stats.Round(overall.P50ResponseTime, 2),
		P95Latency:         stats.Round(overall.P95ResponseTime, 2),
		P99Latency:         stats.Round(overall.P99ResponseTime, 2),
		MaxLatency:         stats.Round(overall.MaxResponseTime, 2),
		ErrorRate:          stats.Round(overall.ErrorRate*100, 2),
		TransferTotal:      overall.TotalResponseSize,
	}
}

// RankingEntry is a position of a target ordered by throughput.
type RankingEntry struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	RPS        float64 `json:"rps"`
	AvgLatency float64 `json:"avgLatency"`
	P99Latency float64 `json:"p99Latency"`
	ErrorRate  float64 `json:"errorRate"`
	// RelativePerformance is a percentage of throughput of the first target.
	RelativePerformance int `json:"relativePerformance"`
}

// Rank orders targets by requests per second, descending. Targets with equal
// throughput keep their order.
func Rank(results []TargetResult) []RankingEntry {
	sorted := make([]TargetResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Summary.RequestsPerSecond > sorted[j].Summary.RequestsPerSecond
	})

	ranking := make([]RankingEntry, 0, len(sorted))
	if len(sorted) == 0 {
		return ranking
	}

	top := sorted[0].Summary.RequestsPerSecond
	if top == 0 {
		top = 1
	}
	for i, result := range sorted {
		ranking = append(ranking, RankingEntry{
			Rank:                i + 1,
			Name:                result.Name,
			RPS:                 result.Summary.RequestsPerSecond,
			AvgLatency:          result.Summary.AvgLatency,
			P99Latency:          result.Summary.P99Latency,
			ErrorRate:           result.Summary.ErrorRate,
			RelativePerformance: int(stats.Round(result.Summary.RequestsPerSecond/top*100, 0)),
		})
	}
	return ranking
}
