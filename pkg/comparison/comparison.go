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
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/benchmark"
)

// TargetResult is a finished benchmark of one target.
type TargetResult struct {
	Name    string                     `json:"name"`
	Port    int                        `json:"port"`
	URL     string                     `json:"url"`
	Result  *benchmark.BenchmarkResult `json:"result"`
	Summary Summary                    `json:"summary"`
}

// Failure is a target which could not be benchmarked.
type Failure struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Result of a comparison. Ranking contains benchmarked targets only.
type Result struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime"`
	DurationMs  int64          `json:"duration"`
	Targets     []TargetResult `json:"frameworks"`
	Ranking     []RankingEntry `json:"ranking"`
	Failures    []Failure      `json:"failures,omitempty"`
	Config      Config         `json:"testConfig"`
}

// Orchestrator benchmarks targets one after another with the same scenarios.
type Orchestrator struct {
	config    Config
	worker    benchmark.Worker
	lifecycle Lifecycle

	// WorkspaceRoot is passed to every engine.
	WorkspaceRoot string
	// OnEngine, when set, is called with engine of every target before it runs.
	OnEngine func(target Target, engine *benchmark.Engine)
}

// NewOrchestrator returns orchestrator preparing targets with lifecycle.
func NewOrchestrator(config Config, worker benchmark.Worker, lifecycle Lifecycle) *Orchestrator {
	return &Orchestrator{config: config, worker: worker, lifecycle: lifecycle}
}

// Run benchmarks targets in given order. Target which does not become reachable is
// reported in Failures and others are still benchmarked; any other failure aborts
// the comparison.
func (o *Orchestrator) Run(ctx context.Context, targets []Target) (*Result, error) {
	if err := o.validate(targets); err != nil {
		return nil, err
	}

	result := &Result{
		Name:        o.config.Name,
		Description: o.config.Description,
		StartTime:   time.Now(),
		Config:      o.config,
	}

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "comparison %q cancelled before target %q", o.config.Name, target.Name)
		}
		logrus.Infof("Benchmarking target %q (%d/%d) at %s", target.Name, i+1, len(targets), target.URL())

		targetResult, err := o.runTarget(ctx, target)
		if err != nil {
			if IsTargetUnreachable(err) {
				logrus.Errorf("Skipping target %q: %v", target.Name, err)
				result.Failures = append(result.Failures, Failure{Name: target.Name, URL: target.URL(), Error: err.Error()})
				continue
			}
			return nil, err
		}
		logrus.Infof("Target %q: %.2f requests/sec, p99 %.2fms, errors %.2f%%", target.Name,
			targetResult.Summary.RequestsPerSecond, targetResult.Summary.P99Latency, targetResult.Summary.ErrorRate)
		result.Targets = append(result.Targets, targetResult)
	}

	if len(result.Targets) == 0 {
		return nil, errors.Errorf("comparison %q: none of %d targets could be benchmarked", o.config.Name, len(targets))
	}

	result.Ranking = Rank(result.Targets)
	result.EndTime = time.Now()
	result.DurationMs = result.EndTime.Sub(result.StartTime).Nanoseconds() / int64(time.Millisecond)
	return result, nil
}

func (o *Orchestrator) validate(targets []Target) error {
	if err := Validate(o.config); err != nil {
		return err
	}
	if len(targets) == 0 {
		return &benchmark.ConfigurationError{Message: "comparison needs at least one target"}
	}
	names := make(map[string]bool, len(targets))
	for _, target := range targets {
		if target.Name == "" {
			return &benchmark.ConfigurationError{Message: "target name must not be empty"}
		}
		if names[target.Name] {
			return &benchmark.ConfigurationError{Message: "duplicated target " + target.Name}
		}
		names[target.Name] = true
		if target.BaseURL == "" && target.Port <= 0 {
			return &benchmark.ConfigurationError{Message: "target " + target.Name + " needs base url or port"}
		}
	}
	return nil
}

func (o *Orchestrator) runTarget(ctx context.Context, target Target) (TargetResult, error) {
	if target.WarmupRequests == 0 {
		target.WarmupRequests = o.config.WarmupRequests
	}
	if err := o.lifecycle.Prepare(ctx, target); err != nil {
		return TargetResult{}, err
	}
	defer func() {
		if err := o.lifecycle.Release(target); err != nil {
			logrus.Warnf("Releasing target %q failed: %v", target.Name, err)
		}
	}()

	engine := benchmark.NewEngine(BenchmarkConfig(o.config, target), o.worker)
	engine.WorkspaceRoot = o.WorkspaceRoot
	if o.OnEngine != nil {
		o.OnEngine(target, engine)
	}

	benchmarkResult, err := engine.Run(ctx)
	if err != nil {
		return TargetResult{}, errors.Wrapf(err, "benchmark of target %q failed", target.Name)
	}
	return TargetResult{
		Name:    target.Name,
		Port:    target.Port,
		URL:     target.URL(),
		Result:  benchmarkResult,
		Summary: Summarize(benchmarkResult),
	}, nil
}
