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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/stats"
	"github.com/vafast/thunderbench/pkg/utils/err_collection"
	"golang.org/x/sync/errgroup"
)

// GroupState is a state of group execution.
type GroupState int

const (
	// GroupPending means that group has not started yet.
	GroupPending GroupState = iota
	// GroupRunning means that cases of the group are running.
	GroupRunning
	// GroupCompleted means that all cases succeeded and statistics are merged.
	GroupCompleted
	// GroupFailed means that at least one case failed.
	GroupFailed
)

func (s GroupState) String() string {
	switch s {
	case GroupPending:
		return "pending"
	case GroupRunning:
		return "running"
	case GroupCompleted:
		return "completed"
	case GroupFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s GroupState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *GroupState) UnmarshalText(text []byte) error {
	for _, state := range []GroupState{GroupPending, GroupRunning, GroupCompleted, GroupFailed} {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return errors.Errorf("unknown group state %q", text)
}

// GroupResult holds results of all cases of a group and their merged statistics.
type GroupResult struct {
	Name      string              `json:"name"`
	State     GroupState          `json:"state"`
	StartTime time.Time           `json:"startTime"`
	EndTime   time.Time           `json:"endTime"`
	Stats     stats.DetailedStats `json:"stats"`
	Cases     []stats.CaseResult  `json:"cases"`
	// ExpectedRequests is how group requests would split among cases exactly by weight.
	ExpectedRequests map[string]int `json:"expectedRequests,omitempty"`
}

// caseRunner runs a single case.
type caseRunner interface {
	Run(group TestGroupConfig, test ApiTestConfig) (stats.CaseResult, error)
}

// GroupScheduler runs cases of a group according to its execution mode.
type GroupScheduler struct {
	runner caseRunner
	sleep  func(time.Duration)
}

// NewGroupScheduler returns scheduler running cases with runner.
func NewGroupScheduler(runner caseRunner) GroupScheduler {
	return GroupScheduler{runner: runner, sleep: time.Sleep}
}

// Run runs all cases of the group. On failure returned result has GroupFailed state
// and holds results of cases which succeeded; merged statistics are left empty.
func (s GroupScheduler) Run(group TestGroupConfig) (GroupResult, error) {
	result := GroupResult{Name: group.Name, State: GroupRunning, StartTime: time.Now()}
	logrus.Infof("Starting group %q with %d tests in %s mode", group.Name, len(group.Tests), group.ExecutionMode)

	var err error
	if group.ExecutionMode == Sequential {
		result.Cases, err = s.runSequential(group)
	} else {
		result.Cases, err = s.runParallel(group)
	}
	result.EndTime = time.Now()

	if err != nil {
		result.State = GroupFailed
		logrus.Errorf("Group %q failed: %v", group.Name, err)
		return result, &GroupError{Group: group.Name, Err: err}
	}

	parts := make([]stats.DetailedStats, 0, len(result.Cases))
	for _, caseResult := range result.Cases {
		parts = append(parts, stats.FromCase(caseResult))
	}
	if group.ExecutionMode == Sequential {
		result.Stats = stats.MergeSequential(parts...)
	} else {
		result.Stats = stats.MergeAll(parts...)
	}
	result.ExpectedRequests = expectedRequests(group, result.Stats.TotalRequests)
	result.State = GroupCompleted

	logrus.Infof("Group %q completed: %d requests, %.2f requests/sec", group.Name, result.Stats.TotalRequests, result.Stats.RequestsPerSecond)
	return result, nil
}

func expectedRequests(group TestGroupConfig, total int64) map[string]int {
	if total <= 0 {
		return nil
	}
	expected, err := Distribute(weightsOf(group.Tests), int(total))
	if err != nil {
		logrus.Debugf("Cannot split requests of group %q: %v", group.Name, err)
		return nil
	}
	return expected
}

// runSequential runs cases in declared order and stops at the first failure.
func (s GroupScheduler) runSequential(group TestGroupConfig) ([]stats.CaseResult, error) {
	results := make([]stats.CaseResult, 0, len(group.Tests))
	for i, test := range group.Tests {
		result, err := s.runner.Run(group, test)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		if i < len(group.Tests)-1 && group.Delay > 0 {
			delay := time.Duration(group.Delay) * time.Millisecond
			logrus.Infof("Waiting %s before next test of group %q", delay, group.Name)
			s.sleep(delay)
		}
	}
	return results, nil
}

// runParallel starts all cases at once and waits for every one of them, even when some fail,
// so no load generator is left running. Errors are reported in declared order of cases.
func (s GroupScheduler) runParallel(group TestGroupConfig) ([]stats.CaseResult, error) {
	results := make([]stats.CaseResult, len(group.Tests))
	caseErrors := make([]error, len(group.Tests))

	var cases errgroup.Group
	for i, test := range group.Tests {
		i, test := i, test
		cases.Go(func() error {
			results[i], caseErrors[i] = s.runner.Run(group, test)
			return caseErrors[i]
		})
	}
	cases.Wait()

	var errs errcollection.ErrorCollection
	succeeded := make([]stats.CaseResult, 0, len(results))
	for i := range results {
		if caseErrors[i] != nil {
			errs.Add(caseErrors[i])
			continue
		}
		succeeded = append(succeeded, results[i])
	}
	return succeeded, errs.GetErrIfAny()
}
