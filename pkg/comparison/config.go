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
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/vafast/thunderbench/pkg/benchmark"
	"gopkg.in/yaml.v2"
)

const (
	groupTimeoutSeconds = 10
	contentTypeJSON     = "application/json"
)

// Scenario is a request issued against every compared target.
type Scenario struct {
	Name    string            `yaml:"name" json:"name"`
	Method  string            `yaml:"method" json:"method"`
	Path    string            `yaml:"path" json:"path"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body    interface{}       `yaml:"body,omitempty" json:"body,omitempty"`
	Weight  float64           `yaml:"weight" json:"weight"`
}

// Config describes load shared by all targets of a comparison.
type Config struct {
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Scenarios   []Scenario `yaml:"scenarios" json:"scenarios"`
	Threads     int        `yaml:"threads" json:"threads"`
	Connections int        `yaml:"connections" json:"connections"`
	// Duration in seconds.
	Duration int `yaml:"duration" json:"duration"`
	// WarmupRequests is used for targets which do not set their own.
	WarmupRequests int `yaml:"warmupRequests,omitempty" json:"warmupRequests,omitempty"`
	// Targets may also be given on command line.
	Targets []Target `yaml:"targets,omitempty" json:"targets,omitempty"`
}

// LoadConfig reads comparison from YAML or JSON file and validates it.
func LoadConfig(path string) (Config, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read comparison configuration %q", path)
	}

	var config Config
	if err := yaml.Unmarshal(content, &config); err != nil {
		return Config{}, errors.Wrapf(&benchmark.ConfigurationError{Message: err.Error()},
			"invalid comparison configuration %q", path)
	}
	for i := range config.Scenarios {
		config.Scenarios[i].Body = benchmark.Normalize(config.Scenarios[i].Body)
	}

	if err := Validate(config); err != nil {
		return Config{}, errors.Wrapf(err, "invalid comparison configuration %q", path)
	}
	return config, nil
}

// Validate checks that the benchmark built for any target would be valid.
func Validate(config Config) error {
	if config.Name == "" {
		return &benchmark.ConfigurationError{Message: "comparison name must not be empty"}
	}
	return benchmark.Validate(BenchmarkConfig(config, Target{Name: "validation", BaseURL: "http://localhost"}))
}

// BenchmarkConfig builds single group benchmark running all scenarios in parallel against target.
func BenchmarkConfig(config Config, target Target) benchmark.BenchmarkConfig {
	latency := true
	tests := make([]benchmark.ApiTestConfig, 0, len(config.Scenarios))
	for _, scenario := range config.Scenarios {
		tests = append(tests, benchmark.ApiTestConfig{
			Name: scenario.Name,
			Request: benchmark.RequestConfig{
				Method:  scenario.Method,
				URL:     scenario.Path,
				Headers: scenario.Headers,
				Body:    scenario.Body,
			},
			Weight: scenario.Weight,
		})
	}

	return benchmark.BenchmarkConfig{
		Name:        fmt.Sprintf("%s - %s", config.Name, target.Name),
		Description: config.Description,
		Groups: []benchmark.TestGroupConfig{{
			Name: target.Name + "-test",
			HTTP: benchmark.HTTPConfig{
				BaseURL: target.URL(),
				Headers: map[string]string{"Content-Type": contentTypeJSON},
			},
			Threads:       config.Threads,
			Connections:   config.Connections,
			Duration:      config.Duration,
			Timeout:       groupTimeoutSeconds,
			Latency:       &latency,
			Tests:         tests,
			ExecutionMode: benchmark.Parallel,
		}},
	}
}
