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

package metadata

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/comparison"
	"github.com/vafast/thunderbench/pkg/conf"
	"github.com/vafast/thunderbench/pkg/stats"
)

// RecordRuntimeEnv stores flags, environment, host, start time and platform of a run.
func RecordRuntimeEnv(metadata Metadata, start time.Time, wrkVersion string) error {
	if err := metadata.RecordMap(conf.GetFlags(), TypeFlags); err != nil {
		return err
	}

	if err := recordEnv(metadata, conf.EnvironmentPrefix); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}
	err = metadata.RecordMap(map[string]string{"time": start.Format(time.RFC822Z), "host": hostname}, TypeEmpty)
	if err != nil {
		return err
	}

	platform := GetPlatformMetrics()
	platform[WrkVersionKey] = wrkVersion
	return metadata.RecordMap(platform, TypePlatform)
}

// recordEnv adds all OS Environment variables that starts with prefix 'prefix'
// in the metadata information
func recordEnv(metadata Metadata, prefix string) error {
	envMetadata := map[string]string{}
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			fields := strings.SplitN(env, "=", 2)
			envMetadata[fields[0]] = fields[1]
		}
	}
	return metadata.RecordMap(envMetadata, TypeEnviron)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(stats.Round(value, 2), 'f', -1, 64)
}

// StatsMap flattens statistics into metadata entry.
func StatsMap(detailed stats.DetailedStats) map[string]string {
	return map[string]string{
		"total_requests":      strconv.FormatInt(detailed.TotalRequests, 10),
		"successful_requests": strconv.FormatInt(detailed.SuccessfulRequests, 10),
		"failed_requests":     strconv.FormatInt(detailed.FailedRequests, 10),
		"timeout_requests":    strconv.FormatInt(detailed.TimeoutRequests, 10),
		"slow_requests":       strconv.FormatInt(detailed.SlowRequests, 10),
		"requests_per_second": formatFloat(detailed.RequestsPerSecond),
		"avg_latency_ms":      formatFloat(detailed.AverageResponseTime),
		"min_latency_ms":      formatFloat(detailed.MinResponseTime),
		"max_latency_ms":      formatFloat(detailed.MaxResponseTime),
		"p50_latency_ms":      formatFloat(detailed.P50ResponseTime),
		"p90_latency_ms":      formatFloat(detailed.P90ResponseTime),
		"p95_latency_ms":      formatFloat(detailed.P95ResponseTime),
		"p99_latency_ms":      formatFloat(detailed.P99ResponseTime),
		"error_rate":          formatFloat(detailed.ErrorRate * 100),
		"response_bytes":      strconv.FormatInt(detailed.TotalResponseSize, 10),
	}
}

// RecordResult stores overall summary of a benchmark and summary of each of its groups.
func RecordResult(metadata Metadata, result *benchmark.BenchmarkResult) error {
	overall := StatsMap(result.OverallStats)
	overall["name"] = result.Name
	overall["duration_ms"] = strconv.FormatInt(result.DurationMs, 10)
	overall["groups"] = strconv.Itoa(len(result.Groups))
	if err := metadata.RecordMap(overall, TypeResult); err != nil {
		return err
	}

	for _, group := range result.Groups {
		summary := StatsMap(group.Stats)
		summary["state"] = group.State.String()
		summary["cases"] = strconv.Itoa(len(group.Cases))
		if err := metadata.RecordMap(summary, GroupKind(group.Name)); err != nil {
			return err
		}
	}
	return nil
}

// RecordComparison stores ranking of a comparison, one entry per benchmarked target.
func RecordComparison(metadata Metadata, result *comparison.Result) error {
	ranked := make([]string, 0, len(result.Ranking))
	for _, entry := range result.Ranking {
		ranked = append(ranked, entry.Name)
		err := metadata.RecordMap(map[string]string{
			"rank":                 strconv.Itoa(entry.Rank),
			"requests_per_second":  formatFloat(entry.RPS),
			"avg_latency_ms":       formatFloat(entry.AvgLatency),
			"p99_latency_ms":       formatFloat(entry.P99Latency),
			"error_rate":           formatFloat(entry.ErrorRate),
			"relative_performance": strconv.Itoa(entry.RelativePerformance),
		}, TargetKind(entry.Name))
		if err != nil {
			return err
		}
	}

	failed := make([]string, 0, len(result.Failures))
	for _, failure := range result.Failures {
		failed = append(failed, failure.Name)
	}
	return metadata.RecordMap(map[string]string{
		"name":        result.Name,
		"duration_ms": strconv.FormatInt(result.DurationMs, 10),
		"ranking":     strings.Join(ranked, ","),
		"failed":      strings.Join(failed, ","),
	}, TypeResult)
}
