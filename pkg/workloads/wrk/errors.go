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
	"fmt"

	"github.com/pkg/errors"
)

// WorkerNotFoundError is returned when wrk binary cannot be found or started.
type WorkerNotFoundError struct {
	Path string
	Err  error
}

func (e *WorkerNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wrk binary %q is not available: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("wrk binary %q is not available", e.Path)
}

// WorkerExecutionError is returned when wrk process ended abnormally.
type WorkerExecutionError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *WorkerExecutionError) Error() string {
	return fmt.Sprintf("wrk command %q failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// UnparsableOutputError is returned when wrk output misses the total requests line.
type UnparsableOutputError struct {
	Output string
}

func (e *UnparsableOutputError) Error() string {
	return fmt.Sprintf("cannot find total requests in wrk output: %q", e.Output)
}

// IsWorkerNotFound returns true when cause of err is WorkerNotFoundError.
func IsWorkerNotFound(err error) bool {
	_, ok := errors.Cause(err).(*WorkerNotFoundError)
	return ok
}

// IsWorkerExecution returns true when cause of err is WorkerExecutionError.
func IsWorkerExecution(err error) bool {
	_, ok := errors.Cause(err).(*WorkerExecutionError)
	return ok
}

// IsUnparsableOutput returns true when cause of err is UnparsableOutputError.
func IsUnparsableOutput(err error) bool {
	_, ok := errors.Cause(err).(*UnparsableOutputError)
	return ok
}
