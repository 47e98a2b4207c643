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

import "math"

// weightedAverage averages two values by their sample counts; 0 when there are no samples.
func weightedAverage(a float64, aCount int64, b float64, bCount int64) float64 {
	total := aCount + bCount
	if total == 0 {
		return 0
	}
	return (a*float64(aCount) + b*float64(bCount)) / float64(total)
}

// Merge combines two partial results into one. It is commutative and associative
// (up to floating point error), so partial results can be merged in any order.
//
// Counts and sizes are added and rates are recomputed from merged counts.
// Average and percentile latencies are weighted by request counts. Throughput is
// summed, which holds for partial results measured at the same time. Results measured
// one after another are merged with MergeSequential.
func Merge(a, b DetailedStats) DetailedStats {
	merged := DetailedStats{
		TotalRequests:      a.TotalRequests + b.TotalRequests,
		SuccessfulRequests: a.SuccessfulRequests + b.SuccessfulRequests,
		FailedRequests:     a.FailedRequests + b.FailedRequests,
		TimeoutRequests:    a.TimeoutRequests + b.TimeoutRequests,
		SlowRequests:       a.SlowRequests + b.SlowRequests,

		AverageResponseTime: weightedAverage(a.AverageResponseTime, a.TotalRequests, b.AverageResponseTime, b.TotalRequests),
		P50ResponseTime:     weightedAverage(a.P50ResponseTime, a.TotalRequests, b.P50ResponseTime, b.TotalRequests),
		P90ResponseTime:     weightedAverage(a.P90ResponseTime, a.TotalRequests, b.P90ResponseTime, b.TotalRequests),
		P95ResponseTime:     weightedAverage(a.P95ResponseTime, a.TotalRequests, b.P95ResponseTime, b.TotalRequests),
		P99ResponseTime:     weightedAverage(a.P99ResponseTime, a.TotalRequests, b.P99ResponseTime, b.TotalRequests),
		MaxResponseTime:     math.Max(a.MaxResponseTime, b.MaxResponseTime),

		RequestsPerSecond: a.RequestsPerSecond + b.RequestsPerSecond,

		TotalRequestSize:  a.TotalRequestSize + b.TotalRequestSize,
		TotalResponseSize: a.TotalResponseSize + b.TotalResponseSize,
	}

	// Minimum of a side without samples is meaningless.
	switch {
	case a.TotalRequests == 0 && b.TotalRequests == 0:
		merged.MinResponseTime = math.Min(a.MinResponseTime, b.MinResponseTime)
	case a.TotalRequests == 0:
		merged.MinResponseTime = b.MinResponseTime
	case b.TotalRequests == 0:
		merged.MinResponseTime = a.MinResponseTime
	default:
		merged.MinResponseTime = math.Min(a.MinResponseTime, b.MinResponseTime)
	}

	merged.ErrorRate = ratio(merged.FailedRequests, merged.TotalRequests)
	merged.TimeoutRate = ratio(merged.TimeoutRequests, merged.TotalRequests)
	merged.SlowRate = ratio(merged.SlowRequests, merged.TotalRequests)

	return merged
}

// MergeAll folds all partial results into one. No results give empty statistics.
func MergeAll(parts ...DetailedStats) DetailedStats {
	var merged DetailedStats
	for i, part := range parts {
		if i == 0 {
			merged = part
			continue
		}
		merged = Merge(merged, part)
	}
	return merged
}

// MergeSequential folds results measured one after another. Everything but throughput
// is merged as in MergeAll. Throughput is requests over the summed measuring time, with
// time of each part taken as its requests over its throughput. Parts without throughput
// are left out of it.
func MergeSequential(parts ...DetailedStats) DetailedStats {
	merged := MergeAll(parts...)

	var requests int64
	var elapsed float64
	for _, part := range parts {
		if part.RequestsPerSecond <= 0 {
			continue
		}
		requests += part.TotalRequests
		elapsed += float64(part.TotalRequests) / part.RequestsPerSecond
	}

	merged.RequestsPerSecond = 0
	if elapsed > 0 {
		merged.RequestsPerSecond = float64(requests) / elapsed
	}
	return merged
}
