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
	"math"
	"strings"
)

const (
	// weightTolerance is accepted difference between sum of weights and 100.
	weightTolerance = 0.01
	// epsilon absorbs floating point error of summed weights, so 99.99 is still accepted.
	epsilon = 1e-9
)

// Validate checks configuration invariants. Every violation is reported as ConfigurationError.
func Validate(config BenchmarkConfig) error {
	if len(config.Groups) == 0 {
		return configurationErrorf("at least one test group is required")
	}

	groupNames := map[string]bool{}
	for _, group := range config.Groups {
		if err := validateGroup(group); err != nil {
			return err
		}
		if groupNames[group.Name] {
			return configurationErrorf("test group name %q is not unique", group.Name)
		}
		groupNames[group.Name] = true
	}
	return nil
}

func validateGroup(group TestGroupConfig) error {
	if strings.TrimSpace(group.Name) == "" {
		return configurationErrorf("test group name cannot be empty")
	}

	if group.ExecutionMode != Parallel && group.ExecutionMode != Sequential {
		return configurationErrorf("execution mode of group %q must be %q or %q, got %q",
			group.Name, Parallel, Sequential, group.ExecutionMode)
	}

	if group.Delay < 0 {
		return configurationErrorf("delay of group %q cannot be negative, got %d", group.Name, group.Delay)
	}

	if group.HTTP.Timeout < 0 {
		return configurationErrorf("http timeout of group %q cannot be negative, got %d", group.Name, group.HTTP.Timeout)
	}

	if group.Timeout < 0 {
		return configurationErrorf("timeout of group %q cannot be negative, got %d", group.Name, group.Timeout)
	}

	if len(group.Tests) == 0 {
		return configurationErrorf("test group %q needs at least one test", group.Name)
	}

	testNames := map[string]bool{}
	for _, test := range group.Tests {
		if err := validateTest(test, group.Name); err != nil {
			return err
		}
		if testNames[test.Name] {
			return configurationErrorf("test name %q is not unique in group %q", test.Name, group.Name)
		}
		testNames[test.Name] = true
	}

	if group.Threads <= 0 {
		return configurationErrorf("threads of group %q must be greater than 0, got %d", group.Name, group.Threads)
	}

	if group.Connections <= 0 {
		return configurationErrorf("connections of group %q must be greater than 0, got %d", group.Name, group.Connections)
	}

	if group.Duration <= 0 {
		return configurationErrorf("duration of group %q must be greater than 0, got %d", group.Name, group.Duration)
	}

	return validateWeights(weightsOf(group.Tests), group.Name)
}

func validateTest(test ApiTestConfig, groupName string) error {
	if strings.TrimSpace(test.Name) == "" {
		return configurationErrorf("test name in group %q cannot be empty", groupName)
	}

	if test.Request.Method == "" {
		return configurationErrorf("test %q in group %q has no request method", test.Name, groupName)
	}

	if test.Request.URL == "" {
		return configurationErrorf("test %q in group %q has no request url", test.Name, groupName)
	}

	if test.Request.Timeout < 0 {
		return configurationErrorf("request timeout of test %q cannot be negative, got %d", test.Name, test.Request.Timeout)
	}

	if test.Weight < 0 || test.Weight > 100 || math.IsNaN(test.Weight) {
		return configurationErrorf("weight of test %q must be between 0 and 100, got %v", test.Name, test.Weight)
	}

	if test.ErrorHandling != nil && test.ErrorHandling.ExpectMaxResponseTime <= 0 {
		return configurationErrorf("expected max response time of test %q must be greater than 0, got %v",
			test.Name, test.ErrorHandling.ExpectMaxResponseTime)
	}

	return nil
}

// validateWeights checks that weights sum up to 100 within tolerance.
func validateWeights(weights []Weight, groupName string) error {
	total := 0.0
	for _, weight := range weights {
		total += weight.Weight
	}
	if math.Abs(total-100) <= weightTolerance+epsilon {
		return nil
	}
	if groupName == "" {
		return configurationErrorf("weights must sum up to 100, got %v", total)
	}
	return configurationErrorf("weights of group %q must sum up to 100, got %v", groupName, total)
}
