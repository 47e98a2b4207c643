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
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/stats"
	"github.com/vafast/thunderbench/pkg/workloads/wrk"
)

const (
	// DefaultInterGroupDelay is used after sequential group which does not set its delay.
	DefaultInterGroupDelay = time.Second
	defaultEventBuffer     = 16
)

// State is a state of a benchmark run.
type State int

const (
	// Idle means that engine has not run yet.
	Idle State = iota
	// Validating means that configuration is being checked.
	Validating
	// Running means that groups are running.
	Running
	// Finalizing means that overall statistics are being merged.
	Finalizing
	// Done means that run succeeded.
	Done
	// Failed means that run failed and no result was produced.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Running:
		return "running"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Worker is a load generator which can be checked once before run.
type Worker interface {
	wrk.Invoker
	CheckAvailability() (version string, err error)
}

// BenchmarkResult is a result of successful run.
type BenchmarkResult struct {
	Name         string              `json:"name"`
	StartTime    time.Time           `json:"startTime"`
	EndTime      time.Time           `json:"endTime"`
	DurationMs   int64               `json:"duration"`
	Groups       []GroupResult       `json:"groups"`
	OverallStats stats.DetailedStats `json:"overallStats"`
}

// Engine runs groups of a benchmark in declared order.
type Engine struct {
	config BenchmarkConfig
	worker Worker

	// WorkspaceRoot is where run workspace is created; empty means os.TempDir().
	WorkspaceRoot string
	// InterGroupDelay is used after sequential group without its own delay.
	InterGroupDelay time.Duration

	mutex       sync.Mutex
	state       State
	subscribers subscribers
}

// NewEngine returns engine for configuration. Configuration is validated when run starts.
func NewEngine(config BenchmarkConfig, worker Worker) *Engine {
	return &Engine{
		config:          config,
		worker:          worker,
		InterGroupDelay: DefaultInterGroupDelay,
	}
}

// State returns current state of the engine.
func (e *Engine) State() State {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.state
}

func (e *Engine) setState(state State) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	logrus.Debugf("Benchmark %q: %s -> %s", e.config.Name, e.state, state)
	e.state = state
}

// Subscribe returns channel receiving event after every group. Channel is closed when run ends.
// Subscriber which does not read fast enough loses events.
func (e *Engine) Subscribe() <-chan Event {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.subscribers.add(defaultEventBuffer)
}

// Run runs the benchmark. Cancellation of ctx is honored between groups only: running
// group always completes. Result is returned only when every group succeeded.
func (e *Engine) Run(ctx context.Context) (result *BenchmarkResult, err error) {
	e.mutex.Lock()
	if e.state == Validating || e.state == Running || e.state == Finalizing {
		e.mutex.Unlock()
		return nil, errors.Errorf("benchmark %q is already running", e.config.Name)
	}
	e.mutex.Unlock()

	defer func() {
		if err != nil {
			e.setState(Failed)
		}
		e.mutex.Lock()
		e.subscribers.close()
		e.mutex.Unlock()
	}()

	e.setState(Validating)
	if err := Validate(e.config); err != nil {
		return nil, err
	}
	version, err := e.worker.CheckAvailability()
	if err != nil {
		return nil, err
	}
	logrus.Debugf("Using wrk %s", version)

	workspace, err := NewWorkspace(e.WorkspaceRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := workspace.Close(); closeErr != nil {
			logrus.Warn(closeErr)
		}
	}()

	e.setState(Running)
	scheduler := NewGroupScheduler(NewCaseRunner(e.worker, workspace))
	result = &BenchmarkResult{Name: e.config.Name, StartTime: time.Now()}
	groupStats := make([]stats.DetailedStats, 0, len(e.config.Groups))

	for i, group := range e.config.Groups {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "benchmark %q cancelled before group %q", e.config.Name, group.Name)
		}

		groupResult, err := scheduler.Run(group)
		if err != nil {
			return nil, err
		}
		result.Groups = append(result.Groups, groupResult)
		groupStats = append(groupStats, groupResult.Stats)

		e.publish(Event{
			Progress: Progress{
				GroupName:  group.Name,
				Completed:  i + 1,
				Total:      len(e.config.Groups),
				Percentage: stats.Round(float64(i+1)/float64(len(e.config.Groups))*100, 2),
			},
			Snapshot: stats.MergeSequential(groupStats...),
		})

		if i < len(e.config.Groups)-1 && (group.ExecutionMode == Sequential || group.Delay > 0) {
			if err := e.delayAfter(ctx, group); err != nil {
				return nil, err
			}
		}
	}

	e.setState(Finalizing)
	result.OverallStats = stats.MergeSequential(groupStats...)
	result.EndTime = time.Now()
	result.DurationMs = result.EndTime.Sub(result.StartTime).Nanoseconds() / int64(time.Millisecond)
	e.setState(Done)

	logrus.Infof("Benchmark %q done in %dms: %d requests, %.2f requests/sec", result.Name, result.DurationMs,
		result.OverallStats.TotalRequests, result.OverallStats.RequestsPerSecond)
	return result, nil
}

func (e *Engine) delayAfter(ctx context.Context, group TestGroupConfig) error {
	delay := e.InterGroupDelay
	if group.Delay > 0 {
		delay = time.Duration(group.Delay) * time.Millisecond
	}
	logrus.Infof("Waiting %s before next group", delay)

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "benchmark %q cancelled after group %q", e.config.Name, group.Name)
	}
}

func (e *Engine) publish(event Event) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if dropped := e.subscribers.publish(event); dropped > 0 {
		logrus.Warnf("%d subscribers missed progress of group %q", dropped, event.Progress.GroupName)
	}
}
