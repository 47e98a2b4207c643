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
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/executor"
)

const (
	// waitGracePeriod is added to the test duration before wrk is considered hung.
	waitGracePeriod = 30 * time.Second
	stderrTailLimit = 4096
)

// Config contains all data for running wrk.
type Config struct {
	// Path to wrk binary.
	Path string
	// WaitGracePeriod is how long past the test duration (and request timeout) wrk may run
	// before it is stopped and reported as failed.
	WaitGracePeriod time.Duration
}

// DefaultConfig is a constructor for Config with default parameters. Binary is looked up
// in binDir and PATH; failed lookup leaves plain "wrk" so that availability check reports it.
func DefaultConfig(binDir string) Config {
	path, err := Lookup(binDir)
	if err != nil {
		path = binaryName
	}
	return Config{
		Path:            path,
		WaitGracePeriod: waitGracePeriod,
	}
}

// Request describes one wrk run.
type Request struct {
	Threads     int
	Connections int
	Duration    time.Duration
	// ScriptPath is a Lua script shaping the request; empty means plain GET of URL.
	ScriptPath string
	URL        string
	// Timeout is wrk socket/request timeout; zero means wrk default.
	Timeout time.Duration
	Latency bool
}

// Invoker runs a load generator and returns its raw report.
type Invoker interface {
	Invoke(request Request) (output string, err error)
}

// Wrk is a HTTP load generator.
// https://github.com/wg/wrk
type Wrk struct {
	executor executor.Executor
	config   Config
}

// New returns a new wrk instance which runs its processes with given executor.
func New(executor executor.Executor, config Config) Wrk {
	if config.WaitGracePeriod == 0 {
		config.WaitGracePeriod = waitGracePeriod
	}
	return Wrk{
		executor: executor,
		config:   config,
	}
}

// Path returns used wrk binary.
func (w Wrk) Path() string {
	return w.config.Path
}

func seconds(duration time.Duration) string {
	secs := int64(duration / time.Second)
	if duration%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10) + "s"
}

// Command returns wrk command line for request.
func (w Wrk) Command(request Request) string {
	args := []string{
		w.config.Path,
		"-t", strconv.Itoa(request.Threads),
		"-c", strconv.Itoa(request.Connections),
		"-d", seconds(request.Duration),
	}
	if request.ScriptPath != "" {
		args = append(args, "-s", request.ScriptPath)
	}
	if request.Latency {
		args = append(args, "--latency")
	}
	if request.Timeout > 0 {
		args = append(args, "--timeout", seconds(request.Timeout))
	}
	args = append(args, request.URL)
	return executor.ShellJoin(args...)
}

// Invoke runs wrk and blocks until it ends. Standard output is returned on success.
// Process is always stopped and its output files are removed before return.
func (w Wrk) Invoke(request Request) (string, error) {
	if request.Threads < 1 || request.Connections < 1 {
		return "", errors.Errorf("wrk needs at least one thread and one connection, got %d threads and %d connections",
			request.Threads, request.Connections)
	}
	if request.Connections < request.Threads {
		// wrk refuses to run with fewer connections than threads.
		request.Threads = request.Connections
	}

	command := w.Command(request)
	logrus.Debugf("Running %s", command)

	handle, err := w.executor.Execute(command)
	if err != nil {
		return "", &WorkerNotFoundError{Path: w.config.Path, Err: err}
	}
	defer handle.EraseOutput()
	defer handle.Clean()
	defer handle.Stop()

	deadline := request.Duration + request.Timeout + w.config.WaitGracePeriod
	if !handle.Wait(deadline) {
		if err := handle.Stop(); err != nil {
			logrus.Errorf("Cannot stop %q: %v", command, err)
		}
		executor.LogUnsucessfulExecution(command, w.executor.Name(), handle)
		return "", &WorkerExecutionError{
			Command:  command,
			ExitCode: -1,
			Stderr:   fmt.Sprintf("still running %s after planned end, stopped", w.config.WaitGracePeriod),
		}
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return "", errors.Wrapf(err, "cannot read exit code of %q", command)
	}
	if exitCode != 0 {
		executor.LogUnsucessfulExecution(command, w.executor.Name(), handle)
		return "", &WorkerExecutionError{
			Command:  command,
			ExitCode: exitCode,
			Stderr:   readOutput(handle.StderrFile, stderrTailLimit),
		}
	}

	stdout, err := handle.StdoutFile()
	if err != nil {
		return "", errors.Wrapf(err, "cannot open output of %q", command)
	}
	defer stdout.Close()

	output, err := ioutil.ReadAll(stdout)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read output of %q", command)
	}

	executor.LogSuccessfulExecution(command, w.executor.Name(), handle)
	return string(output), nil
}

// readOutput returns at most limit last bytes of output file.
func readOutput(open func() (*os.File, error), limit int) string {
	file, err := open()
	if err != nil {
		return err.Error()
	}
	defer file.Close()

	output, err := ioutil.ReadAll(file)
	if err != nil {
		return err.Error()
	}
	if len(output) > limit {
		output = output[len(output)-limit:]
	}
	return string(output)
}
