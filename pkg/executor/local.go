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

package executor

import (
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// killGracePeriod is how long Stop waits after SIGTERM before it sends SIGKILL.
const killGracePeriod = 5 * time.Second

// Local provides the execution environment on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	// OutputDir is a base directory for stdout and stderr files. Empty means os.TempDir().
	OutputDir string
}

// NewLocal returns a Local instance.
func NewLocal() Local {
	return Local{}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	stdoutFile, stderrFile, err := createExecutorOutputFiles(l.OutputDir, command, "local")
	if err != nil {
		return nil, err
	}

	logrus.Debugf("Starting %q locally", command)

	cmd := exec.Command("sh", "-c", command)
	// Separate process group lets Stop signal the shell together with all its children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	if err := cmd.Start(); err != nil {
		stdoutFile.Close()
		stderrFile.Close()
		removeOutputDir(stdoutFile)
		return nil, errors.Wrapf(err, "could not start %q", command)
	}

	logrus.Debugf("Started %q with pid %d", command, cmd.Process.Pid)

	t := newLocalTaskHandle(cmd, stdoutFile, stderrFile)

	go func() {
		// Error from Wait only repeats what ProcessState holds.
		cmd.Wait()

		waitStatus := cmd.ProcessState.Sys().(syscall.WaitStatus)
		exitCode := waitStatus.ExitStatus()
		if waitStatus.Signaled() {
			// Negative exit code shows which signal caused the termination.
			exitCode = -int(waitStatus.Signal())
		}

		logrus.Debugf("Ended %q with output in %q and exit code %d", command, stdoutFile.Name(), exitCode)
		t.complete(exitCode)
	}()

	register(t)
	return t, nil
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	cmd        *exec.Cmd
	stdoutFile *os.File
	stderrFile *os.File

	mutex      sync.Mutex
	exitCode   *int
	waitEndCh  chan struct{}
	stopCalled bool
}

func newLocalTaskHandle(cmd *exec.Cmd, stdoutFile, stderrFile *os.File) *localTaskHandle {
	return &localTaskHandle{
		cmd:        cmd,
		stdoutFile: stdoutFile,
		stderrFile: stderrFile,
		waitEndCh:  make(chan struct{}),
	}
}

func (taskHandle *localTaskHandle) complete(exitCode int) {
	taskHandle.mutex.Lock()
	taskHandle.exitCode = &exitCode
	taskHandle.mutex.Unlock()
	close(taskHandle.waitEndCh)
}

func (taskHandle *localTaskHandle) isTerminated() bool {
	select {
	case <-taskHandle.waitEndCh:
		return true
	default:
		return false
	}
}

// Stop terminates the local task: SIGTERM to the whole process group,
// SIGKILL when it is still alive after grace period.
func (taskHandle *localTaskHandle) Stop() error {
	if taskHandle.isTerminated() {
		return nil
	}

	pgid := -taskHandle.cmd.Process.Pid
	logrus.Debugf("Sending SIGTERM to process group %d", -pgid)
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil && !taskHandle.isTerminated() {
		return errors.Wrapf(err, "cannot terminate process group %d", -pgid)
	}

	if taskHandle.Wait(killGracePeriod) {
		return nil
	}

	logrus.Warnf("Process group %d still alive after %s, sending SIGKILL", -pgid, killGracePeriod)
	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil && !taskHandle.isTerminated() {
		return errors.Wrapf(err, "cannot kill process group %d", -pgid)
	}
	taskHandle.Wait(0)
	return nil
}

// Status returns a state of the task.
func (taskHandle *localTaskHandle) Status() TaskState {
	if taskHandle.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns exit code of the terminated task.
func (taskHandle *localTaskHandle) ExitCode() (int, error) {
	if !taskHandle.isTerminated() {
		return -1, errors.New("task is not terminated")
	}
	taskHandle.mutex.Lock()
	defer taskHandle.mutex.Unlock()
	return *taskHandle.exitCode, nil
}

// StdoutFile returns a file handle for file to the task's stdout file.
func (taskHandle *localTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(taskHandle.stdoutFile)
}

// StderrFile returns a file handle for file to the task's stderr file.
func (taskHandle *localTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(taskHandle.stderrFile)
}

// Wait blocks until process is terminated or timeout appeared.
// Returns true when process terminates before timeout, otherwise false.
func (taskHandle *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-taskHandle.waitEndCh
		return true
	}

	select {
	case <-taskHandle.waitEndCh:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Clean closes stdout & stderr files of the task.
func (taskHandle *localTaskHandle) Clean() error {
	return closeOutputFiles(taskHandle.stdoutFile, taskHandle.stderrFile)
}

// EraseOutput removes directory with stdout & stderr files.
func (taskHandle *localTaskHandle) EraseOutput() error {
	return removeOutputDir(taskHandle.stdoutFile)
}

// Address returns address where task was located.
func (taskHandle *localTaskHandle) Address() string {
	return "127.0.0.1"
}

// openOutputFile reopens output file for reading, so reader starts from the beginning
// while process may still write to the original descriptor.
func openOutputFile(file *os.File) (*os.File, error) {
	if _, err := os.Stat(file.Name()); err != nil {
		return nil, errors.Wrapf(err, "output file %q is not available", file.Name())
	}
	return os.Open(file.Name())
}

func closeOutputFiles(files ...*os.File) error {
	var firstErr error
	for _, file := range files {
		// Closing twice is not an error for the caller.
		if err := file.Close(); err != nil && firstErr == nil && !errors.Is(err, os.ErrClosed) {
			firstErr = err
		}
	}
	return firstErr
}
