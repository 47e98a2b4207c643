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

// ExecutionMode tells how cases of a group are run.
type ExecutionMode string

const (
	// Parallel mode starts all cases of a group at once.
	Parallel ExecutionMode = "parallel"
	// Sequential mode runs cases in declared order, with optional delay between them.
	Sequential ExecutionMode = "sequential"
)

// RequestConfig describes HTTP request of a test case.
type RequestConfig struct {
	Method  string            `yaml:"method" json:"method"`
	URL     string            `yaml:"url" json:"url"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	// Body is sent as JSON unless it is a string.
	Body  interface{}            `yaml:"body,omitempty" json:"body,omitempty"`
	Query map[string]interface{} `yaml:"query,omitempty" json:"query,omitempty"`
	// Timeout in seconds, overrides group timeout for this case.
	Timeout int `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// ErrorHandling holds expectations used to classify responses.
type ErrorHandling struct {
	// ExpectMaxResponseTime in milliseconds; slower requests are counted as slow.
	ExpectMaxResponseTime float64 `yaml:"expectMaxResponseTime" json:"expectMaxResponseTime"`
}

// ApiTestConfig is a single test case: named request with its traffic share.
type ApiTestConfig struct {
	Name    string        `yaml:"name" json:"name"`
	Request RequestConfig `yaml:"request" json:"request"`
	// Weight is a percentage of group traffic, weights of a group sum up to 100.
	Weight        float64        `yaml:"weight" json:"weight"`
	ErrorHandling *ErrorHandling `yaml:"errorHandling,omitempty" json:"errorHandling,omitempty"`
}

// HTTPConfig holds defaults shared by all cases of a group.
type HTTPConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
	// Timeout in seconds, used when group does not set its own.
	Timeout int               `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// TestGroupConfig is a set of cases sharing load parameters and target.
type TestGroupConfig struct {
	Name string     `yaml:"name" json:"name"`
	HTTP HTTPConfig `yaml:"http,omitempty" json:"http,omitempty"`

	Threads     int `yaml:"threads" json:"threads"`
	Connections int `yaml:"connections" json:"connections"`
	// Duration in seconds.
	Duration int `yaml:"duration" json:"duration"`
	// Timeout in seconds of a single request.
	Timeout int `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Latency enables latency distribution; nil means enabled.
	Latency *bool `yaml:"latency,omitempty" json:"latency,omitempty"`

	Tests         []ApiTestConfig `yaml:"tests" json:"tests"`
	ExecutionMode ExecutionMode   `yaml:"executionMode" json:"executionMode"`
	// Delay in milliseconds between cases of a sequential group and after the group.
	Delay int `yaml:"delay,omitempty" json:"delay,omitempty"`
}

// BenchmarkConfig is a whole benchmark: groups run in declared order.
type BenchmarkConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Groups      []TestGroupConfig `yaml:"groups" json:"groups"`
}

// LatencyEnabled returns whether latency distribution is requested from the load generator.
func (g TestGroupConfig) LatencyEnabled() bool {
	return g.Latency == nil || *g.Latency
}
