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

package benchmark

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/stats"
	"github.com/vafast/thunderbench/pkg/workloads/wrk"
)

const defaultContentType = "application/json"

// CaseRunner runs a single test case with the load generator.
type CaseRunner struct {
	invoker   wrk.Invoker
	workspace *Workspace
}

// NewCaseRunner returns case runner writing request scripts into workspace.
func NewCaseRunner(invoker wrk.Invoker, workspace *Workspace) CaseRunner {
	return CaseRunner{invoker: invoker, workspace: workspace}
}

// Run runs test of the group with its weighted share of group threads and connections.
func (r CaseRunner) Run(group TestGroupConfig, test ApiTestConfig) (stats.CaseResult, error) {
	targetURL, err := caseURL(group.HTTP.BaseURL, test.Request)
	if err != nil {
		return stats.CaseResult{}, err
	}

	body, err := encodeBody(test.Request.Body)
	if err != nil {
		return stats.CaseResult{}, errors.Wrapf(err, "cannot encode body of test %q", test.Name)
	}

	scriptPath := r.workspace.ScriptPath(group.Name, test.Name)
	script := wrk.Script{
		Method:  strings.ToUpper(test.Request.Method),
		URL:     targetURL,
		Headers: caseHeaders(group.HTTP.Headers, test.Request.Headers),
		Body:    body,
	}
	if err := wrk.GenerateScript(scriptPath, script); err != nil {
		return stats.CaseResult{}, err
	}

	request := wrk.Request{
		Threads:     share(group.Threads, test.Weight),
		Connections: share(group.Connections, test.Weight),
		Duration:    time.Duration(group.Duration) * time.Second,
		ScriptPath:  scriptPath,
		URL:         targetURL,
		Timeout:     caseTimeout(group, test),
		Latency:     group.LatencyEnabled(),
	}

	logrus.Infof("Running test %q of group %q: %d threads, %d connections, %ds (weight %v%%)",
		test.Name, group.Name, request.Threads, request.Connections, group.Duration, test.Weight)

	output, err := r.invoker.Invoke(request)
	if err != nil {
		return stats.CaseResult{}, errors.Wrapf(err, "test %q of group %q", test.Name, group.Name)
	}

	result, err := wrk.Parse(output)
	if err != nil {
		return stats.CaseResult{}, errors.Wrapf(err, "test %q of group %q", test.Name, group.Name)
	}
	result.Name = test.Name

	if test.ErrorHandling != nil {
		result.SlowRequests = estimateSlowRequests(result.Latency, result.TotalRequests, test.ErrorHandling.ExpectMaxResponseTime)
	}

	return result, nil
}

// caseURL joins base URL with case URL unless the latter is absolute, and appends query.
func caseURL(baseURL string, request RequestConfig) (string, error) {
	target := request.URL
	if !strings.HasPrefix(target, "http") {
		target = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrapf(err, "invalid url %q", target)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", configurationErrorf("url %q is not absolute, base url is required", target)
	}

	if len(request.Query) > 0 {
		query := parsed.Query()
		for key, value := range request.Query {
			query.Set(key, fmt.Sprint(value))
		}
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

// caseHeaders merges headers, case headers win over group ones.
func caseHeaders(groupHeaders, testHeaders map[string]string) map[string]string {
	headers := map[string]string{"Content-Type": defaultContentType}
	for name, value := range groupHeaders {
		headers[name] = value
	}
	for name, value := range testHeaders {
		headers[name] = value
	}
	return headers
}

func encodeBody(body interface{}) (string, error) {
	switch typed := body.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func caseTimeout(group TestGroupConfig, test ApiTestConfig) time.Duration {
	switch {
	case test.Request.Timeout > 0:
		return time.Duration(test.Request.Timeout) * time.Second
	case group.Timeout > 0:
		return time.Duration(group.Timeout) * time.Second
	case group.HTTP.Timeout > 0:
		return time.Duration(group.HTTP.Timeout) * time.Second
	}
	return 0
}

// estimateSlowRequests estimates how many requests took longer than threshold (ms),
// interpolating within the reported latency distribution.
func estimateSlowRequests(latency stats.LatencyStats, total int64, threshold float64) int64 {
	if total == 0 || threshold >= latency.Max {
		return 0
	}

	points := []struct{ percentile, value float64 }{
		{0, 0},
		{50, latency.P50},
		{75, latency.P75},
		{90, latency.P90},
		{95, latency.P95},
		{99, latency.P99},
		{100, latency.Max},
	}

	// Backfilled distribution does not have to be monotonic.
	for i := 1; i < len(points); i++ {
		points[i].value = math.Max(points[i].value, points[i-1].value)
	}

	below := 100.0
	for i := 1; i < len(points); i++ {
		if points[i].value <= threshold {
			continue
		}
		previous := points[i-1]
		current := points[i]
		below = previous.percentile + (current.percentile-previous.percentile)*(threshold-previous.value)/(current.value-previous.value)
		break
	}

	return int64(math.Round(float64(total) * (100 - below) / 100))
}
