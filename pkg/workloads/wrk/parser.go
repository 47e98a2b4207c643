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

package wrk

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vafast/thunderbench/pkg/stats"
)

var (
	// 181385 requests in 10.01s, 26.08MB read
	requestsRegex = regexp.MustCompile(`^(\d+)\s+requests\s+in\s+([\d.]+[a-z]+),\s+([\d.]+[KMGT]?B)\s+read`)
	// Requests/sec:  18121.15
	requestsPerSecondRegex = regexp.MustCompile(`^Requests/sec:\s+([\d.]+)`)
	// Transfer/sec:      2.61MB
	transferPerSecondRegex = regexp.MustCompile(`^Transfer/sec:\s+([\d.]+[KMGT]?B)`)
	// Latency   635.91us    0.89ms  12.92ms   93.69%
	latencyRegex = regexp.MustCompile(`^Latency\s+([\d.]+[a-z]+)\s+([\d.]+[a-z]+)\s+([\d.]+[a-z]+)`)
	// 99%    4.99ms
	distributionRegex = regexp.MustCompile(`^([\d.]+)%\s+([\d.]+[a-z]+)$`)
	// Socket errors: connect 0, read 0, write 0, timeout 5
	socketErrorsRegex = regexp.MustCompile(`^Socket errors:\s+connect\s+(\d+),\s+read\s+(\d+),\s+write\s+(\d+),\s+timeout\s+(\d+)`)
	// Non-2xx or 3xx responses: 12
	nonSuccessRegex = regexp.MustCompile(`^Non-2xx or 3xx responses:\s+(\d+)`)

	timeUnits = map[string]float64{
		"us": 0.001,
		"ms": 1,
		"s":  1000,
		"m":  60 * 1000,
		"h":  60 * 60 * 1000,
	}
	sizeUnits = map[string]float64{
		"B":  1,
		"KB": 1 << 10,
		"MB": 1 << 20,
		"GB": 1 << 30,
		"TB": 1 << 40,
	}
	valueWithUnitRegex = regexp.MustCompile(`^([\d.]+)([A-Za-z]*)$`)
)

func splitUnit(value string) (float64, string, error) {
	match := valueWithUnitRegex.FindStringSubmatch(value)
	if match == nil {
		return 0, "", errors.Errorf("cannot split value and unit of %q", value)
	}
	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, "", errors.Wrapf(err, "cannot parse number of %q", value)
	}
	return number, match[2], nil
}

// parseMilliseconds converts wrk time like "635.91us" or "1.20s" into milliseconds.
func parseMilliseconds(value string) (float64, error) {
	number, unit, err := splitUnit(value)
	if err != nil {
		return 0, err
	}
	if unit == "" {
		return number, nil
	}
	multiplier, ok := timeUnits[unit]
	if !ok {
		return 0, errors.Errorf("unknown time unit in %q", value)
	}
	return number * multiplier, nil
}

// parseBytes converts wrk size like "26.08MB" into bytes.
func parseBytes(value string) (float64, error) {
	number, unit, err := splitUnit(value)
	if err != nil {
		return 0, err
	}
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, errors.Errorf("unknown size unit in %q", value)
	}
	return number * multiplier, nil
}

func parseCount(value string) int64 {
	count, _ := strconv.ParseInt(value, 10, 64)
	return count
}

// Parse extracts case result from wrk report. Only total requests line is mandatory, other
// missing values are derived from those present. Name of the result is left empty.
func Parse(output string) (stats.CaseResult, error) {
	var (
		result            stats.CaseResult
		foundRequests     bool
		foundRPS          bool
		foundTransferRate bool
		inDistribution    bool
		distribution      = map[float64]float64{}
	)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if inDistribution {
			if match := distributionRegex.FindStringSubmatch(line); match != nil {
				percentile, errPercentile := strconv.ParseFloat(match[1], 64)
				latency, errLatency := parseMilliseconds(match[2])
				if errPercentile == nil && errLatency == nil {
					distribution[percentile] = latency
				}
				continue
			}
			inDistribution = false
		}

		switch {
		case strings.HasPrefix(line, "Latency Distribution"):
			inDistribution = true

		case latencyRegex.MatchString(line):
			match := latencyRegex.FindStringSubmatch(line)
			result.Latency.Avg, _ = parseMilliseconds(match[1])
			result.Latency.Stdev, _ = parseMilliseconds(match[2])
			result.Latency.Max, _ = parseMilliseconds(match[3])

		case requestsRegex.MatchString(line):
			match := requestsRegex.FindStringSubmatch(line)
			result.TotalRequests = parseCount(match[1])
			if duration, err := parseMilliseconds(match[2]); err == nil {
				result.DurationSeconds = duration / 1000
			}
			if transferred, err := parseBytes(match[3]); err == nil {
				result.BytesTransferred = int64(math.Round(transferred))
			}
			foundRequests = true

		case socketErrorsRegex.MatchString(line):
			match := socketErrorsRegex.FindStringSubmatch(line)
			result.SocketErrors = stats.SocketErrors{
				Connect: parseCount(match[1]),
				Read:    parseCount(match[2]),
				Write:   parseCount(match[3]),
				Timeout: parseCount(match[4]),
			}

		case nonSuccessRegex.MatchString(line):
			result.NonSuccessResponses = parseCount(nonSuccessRegex.FindStringSubmatch(line)[1])

		case requestsPerSecondRegex.MatchString(line):
			if rps, err := strconv.ParseFloat(requestsPerSecondRegex.FindStringSubmatch(line)[1], 64); err == nil {
				result.RequestsPerSecond = rps
				foundRPS = true
			}

		case transferPerSecondRegex.MatchString(line):
			if rate, err := parseBytes(transferPerSecondRegex.FindStringSubmatch(line)[1]); err == nil {
				result.TransferPerSecond = rate
				foundTransferRate = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats.CaseResult{}, errors.Wrap(err, "cannot read wrk output")
	}

	if !foundRequests {
		return stats.CaseResult{}, &UnparsableOutputError{Output: output}
	}

	if !foundRPS && result.DurationSeconds > 0 {
		result.RequestsPerSecond = float64(result.TotalRequests) / result.DurationSeconds
	}
	if !foundTransferRate && result.DurationSeconds > 0 {
		result.TransferPerSecond = float64(result.BytesTransferred) / result.DurationSeconds
	}

	// wrk does not report minimum latency.
	result.Latency.Min = result.Latency.Avg
	fillPercentiles(&result.Latency, distribution)

	result.TimeoutCount = result.SocketErrors.Timeout
	result.FailedRequests = result.SocketErrors.Total() + result.NonSuccessResponses
	result.SuccessfulRequests = result.TotalRequests - result.FailedRequests
	if result.SuccessfulRequests < 0 {
		result.SuccessfulRequests = 0
	}

	return result, nil
}

// fillPercentiles sets percentiles from reported distribution. Percentiles which were not reported
// are interpolated between the closest reported ones, with average standing for the median and
// maximum for the 100th percentile when nothing closer is known. Missing 99th percentile is the maximum.
func fillPercentiles(latency *stats.LatencyStats, reported map[float64]float64) {
	known := map[float64]float64{}
	for percentile, value := range reported {
		known[percentile] = value
	}
	if _, ok := known[50]; !ok {
		known[50] = latency.Avg
	}
	if _, ok := known[100]; !ok {
		known[100] = latency.Max
	}

	estimate := func(percentile float64) float64 {
		if value, ok := reported[percentile]; ok {
			return value
		}
		if percentile == 99 {
			return latency.Max
		}

		lower, upper := math.Inf(-1), math.Inf(1)
		for point := range known {
			if point <= percentile && point > lower {
				lower = point
			}
			if point >= percentile && point < upper {
				upper = point
			}
		}
		switch {
		case math.IsInf(lower, -1):
			return latency.Avg
		case math.IsInf(upper, 1) || upper == lower:
			return known[lower]
		}
		return known[lower] + (known[upper]-known[lower])*(percentile-lower)/(upper-lower)
	}

	latency.P50 = estimate(50)
	latency.P75 = estimate(75)
	latency.P90 = estimate(90)
	latency.P95 = estimate(95)
	latency.P99 = estimate(99)
}
