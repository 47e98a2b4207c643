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

package visualization

import (
	"fmt"
	"io"
	"strconv"

	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/comparison"
	"github.com/vafast/thunderbench/pkg/stats"
)

// PrintRunMetadata prints id and directory of a run.
func PrintRunMetadata(w io.Writer, runID, directory string) {
	fmt.Fprintf(w, "\nRun id: %s\nLogs: %s\n", runID, directory)
}

// OverviewTable lists overall statistics of a run.
func OverviewTable(overall stats.DetailedStats) *Table {
	table := NewTable([]string{"Metric", "Value"}, nil)
	table.Append("Total requests", strconv.FormatInt(overall.TotalRequests, 10))
	table.Append("Successful requests", strconv.FormatInt(overall.SuccessfulRequests, 10))
	table.Append("Failed requests", strconv.FormatInt(overall.FailedRequests, 10))
	table.Append("Requests/sec", fmt.Sprintf("%.2f", overall.RequestsPerSecond))
	table.Append("Avg latency", FormatMilliseconds(overall.AverageResponseTime))
	table.Append("P50 latency", FormatMilliseconds(overall.P50ResponseTime))
	table.Append("P95 latency", FormatMilliseconds(overall.P95ResponseTime))
	table.Append("P99 latency", FormatMilliseconds(overall.P99ResponseTime))
	table.Append("Max latency", FormatMilliseconds(overall.MaxResponseTime))
	table.Append("Error rate", FormatRate(overall.ErrorRate))
	table.Append("Timeout rate", FormatRate(overall.TimeoutRate))
	table.Append("Slow rate", FormatRate(overall.SlowRate))
	table.Append("Transferred", FormatMegabytes(overall.TotalResponseSize))
	return table
}

// GroupsTable lists statistics of every group.
func GroupsTable(groups []benchmark.GroupResult) *Table {
	table := NewTable([]string{"Group", "State", "Requests", "Requests/sec", "Avg", "P95", "P99", "Errors", "Transferred"}, nil)
	for _, group := range groups {
		table.Append(
			group.Name,
			group.State.String(),
			strconv.FormatInt(group.Stats.TotalRequests, 10),
			fmt.Sprintf("%.2f", group.Stats.RequestsPerSecond),
			FormatMilliseconds(group.Stats.AverageResponseTime),
			FormatMilliseconds(group.Stats.P95ResponseTime),
			FormatMilliseconds(group.Stats.P99ResponseTime),
			FormatRate(group.Stats.ErrorRate),
			FormatMegabytes(group.Stats.TotalResponseSize),
		)
	}
	return table
}

// CasesTable lists results of every case of every group.
func CasesTable(groups []benchmark.GroupResult) *Table {
	table := NewTable([]string{"Group", "Case", "Requests", "Expected", "Requests/sec", "Avg", "P99", "Max", "Failed", "Timeouts", "Slow"}, nil)
	for _, group := range groups {
		for _, result := range group.Cases {
			table.Append(
				group.Name,
				result.Name,
				strconv.FormatInt(result.TotalRequests, 10),
				expected(group, result.Name),
				fmt.Sprintf("%.2f", result.RequestsPerSecond),
				FormatMilliseconds(result.Latency.Avg),
				FormatMilliseconds(result.Latency.P99),
				FormatMilliseconds(result.Latency.Max),
				strconv.FormatInt(result.FailedRequests, 10),
				strconv.FormatInt(result.TimeoutCount, 10),
				strconv.FormatInt(result.SlowRequests, 10),
			)
		}
	}
	return table
}

func expected(group benchmark.GroupResult, name string) string {
	if count, ok := group.ExpectedRequests[name]; ok {
		return strconv.Itoa(count)
	}
	return "-"
}

// PrintBenchmarkResult prints overall, per group and per case tables.
func PrintBenchmarkResult(w io.Writer, result *benchmark.BenchmarkResult) {
	fmt.Fprintf(w, "\nBenchmark %s finished in %.2fs\n\n", result.Name, float64(result.DurationMs)/1000)
	DrawTable(w, OverviewTable(result.OverallStats))
	fmt.Fprintln(w)
	DrawTable(w, GroupsTable(result.Groups))
	fmt.Fprintln(w)
	DrawTable(w, CasesTable(result.Groups))
}

// RankingTable lists compared targets from the fastest.
func RankingTable(ranking []comparison.RankingEntry) *Table {
	table := NewTable([]string{"Rank", "Target", "Requests/sec", "Avg", "P99", "Errors", "Relative"}, nil)
	for _, entry := range ranking {
		table.Append(
			strconv.Itoa(entry.Rank),
			entry.Name,
			FormatNumber(entry.RPS),
			FormatMilliseconds(entry.AvgLatency),
			FormatMilliseconds(entry.P99Latency),
			FormatPercentage(entry.ErrorRate),
			fmt.Sprintf("%d%%", entry.RelativePerformance),
		)
	}
	return table
}

// Speedup returns how many times the fastest target is faster than the slowest one.
// It returns false when there is nothing to compare.
func Speedup(ranking []comparison.RankingEntry) (float64, bool) {
	if len(ranking) < 2 || ranking[len(ranking)-1].RPS == 0 {
		return 0, false
	}
	return ranking[0].RPS / ranking[len(ranking)-1].RPS, true
}

// PrintRanking prints comparison ranking and targets which could not be benchmarked.
func PrintRanking(w io.Writer, result *comparison.Result) {
	fmt.Fprintf(w, "\nComparison %s finished in %.2fs\n\n", result.Name, float64(result.DurationMs)/1000)
	DrawTable(w, RankingTable(result.Ranking))

	if speedup, ok := Speedup(result.Ranking); ok {
		fmt.Fprintf(w, "\n%s is %.2fx faster than %s\n", result.Ranking[0].Name, speedup,
			result.Ranking[len(result.Ranking)-1].Name)
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(w, "Not benchmarked: %s (%s)\n", failure.Name, failure.Error)
	}
}
