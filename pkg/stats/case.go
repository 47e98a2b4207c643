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

// LatencyStats is a latency summary reported by a load generator, in milliseconds.
type LatencyStats struct {
	Avg   float64 `json:"avg"`
	Stdev float64 `json:"stdev"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

// SocketErrors counts socket level errors by category.
type SocketErrors struct {
	Connect int64 `json:"connect"`
	Read    int64 `json:"read"`
	Write   int64 `json:"write"`
	Timeout int64 `json:"timeout"`
}

// Total returns number of all socket errors.
func (e SocketErrors) Total() int64 {
	return e.Connect + e.Read + e.Write + e.Timeout
}

// CaseResult is the outcome of a single case run by one load generator process.
type CaseResult struct {
	Name               string `json:"name"`
	TotalRequests      int64  `json:"totalRequests"`
	SuccessfulRequests int64  `json:"successfulRequests"`
	FailedRequests     int64  `json:"failedRequests"`
	TimeoutCount       int64  `json:"timeoutCount"`
	SlowRequests       int64  `json:"slowRequests"`
	// NonSuccessResponses counts responses with status other than 2xx or 3xx.
	NonSuccessResponses int64 `json:"nonSuccessResponses"`

	DurationSeconds   float64      `json:"durationSeconds"`
	RequestsPerSecond float64      `json:"requestsPerSecond"`
	Latency           LatencyStats `json:"latency"`
	SocketErrors      SocketErrors `json:"socketErrors"`
	BytesTransferred  int64        `json:"bytesTransferred"`
	TransferPerSecond float64      `json:"transferPerSecond"`
}

// FromCase converts case result into mergeable statistics.
func FromCase(result CaseResult) DetailedStats {
	return DetailedStats{
		TotalRequests:      result.TotalRequests,
		SuccessfulRequests: result.SuccessfulRequests,
		FailedRequests:     result.FailedRequests,
		TimeoutRequests:    result.TimeoutCount,
		SlowRequests:       result.SlowRequests,

		AverageResponseTime: result.Latency.Avg,
		MinResponseTime:     result.Latency.Min,
		MaxResponseTime:     result.Latency.Max,
		P50ResponseTime:     result.Latency.P50,
		P90ResponseTime:     result.Latency.P90,
		P95ResponseTime:     result.Latency.P95,
		P99ResponseTime:     result.Latency.P99,

		RequestsPerSecond: result.RequestsPerSecond,
		ErrorRate:         ratio(result.FailedRequests, result.TotalRequests),
		TimeoutRate:       ratio(result.TimeoutCount, result.TotalRequests),
		SlowRate:          ratio(result.SlowRequests, result.TotalRequests),

		TotalResponseSize: result.BytesTransferred,
	}
}
