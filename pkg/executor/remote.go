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
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

// remoteKilledExitCode is reported for tasks which were stopped before they reported exit status.
const remoteKilledExitCode = 129

// Remote provides the execution environment on remote machine via ssh.
// Output of a remote command is streamed into local files.
type Remote struct {
	sshConfig SSHConfig
	// OutputDir is a base directory for local stdout and stderr files. Empty means os.TempDir().
	OutputDir string
}

// NewRemote returns a Remote instance.
func NewRemote(sshConfig SSHConfig) *Remote {
	return &Remote{sshConfig: sshConfig}
}

// Name returns user-friendly name of executor.
func (remote Remote) Name() string {
	return "Remote Executor on " + remote.sshConfig.Host
}

// Execute runs the command given as input on remote host.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (remote Remote) Execute(command string) (TaskHandle, error) {
	address := net.JoinHostPort(remote.sshConfig.Host, strconv.Itoa(remote.sshConfig.Port))
	connection, err := ssh.Dial("tcp", address, remote.sshConfig.ClientConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot connect to %q", address)
	}

	session, err := connection.NewSession()
	if err != nil {
		connection.Close()
		return nil, errors.Wrapf(err, "cannot create ssh session on %q", address)
	}

	stdoutFile, stderrFile, err := createExecutorOutputFiles(remote.OutputDir, command, "remote")
	if err != nil {
		session.Close()
		connection.Close()
		return nil, err
	}
	session.Stdout = stdoutFile
	session.Stderr = stderrFile

	logrus.Debugf("Starting %q remotely on %q", command, address)
	if err := session.Start(fmt.Sprintf("sh -c %s", ShellQuote(command))); err != nil {
		session.Close()
		connection.Close()
		stdoutFile.Close()
		stderrFile.Close()
		removeOutputDir(stdoutFile)
		return nil, errors.Wrapf(err, "cannot start %q on %q", command, address)
	}

	taskHandle := &remoteTaskHandle{
		session:    session,
		connection: connection,
		host:       remote.sshConfig.Host,
		stdoutFile: stdoutFile,
		stderrFile: stderrFile,
		waitEndCh:  make(chan struct{}),
	}

	go func() {
		exitCode := 0
		if err := session.Wait(); err != nil {
			switch waitErr := err.(type) {
			case *ssh.ExitError:
				exitCode = waitErr.ExitStatus()
			default:
				// Session was interrupted without exit status, e.g. by Stop.
				logrus.Debugf("Remote command %q ended without exit status: %v", command, err)
				exitCode = remoteKilledExitCode
			}
		}
		logrus.Debugf("Ended %q on %q with exit code %d", command, address, exitCode)
		taskHandle.complete(exitCode)
	}()

	register(taskHandle)
	return taskHandle, nil
}

// remoteTaskHandle implements TaskHandle interface.
type remoteTaskHandle struct {
	session    *ssh.Session
	connection *ssh.Client
	host       string
	stdoutFile *os.File
	stderrFile *os.File

	mutex     sync.Mutex
	exitCode  *int
	waitEndCh chan struct{}
}

func (taskHandle *remoteTaskHandle) complete(exitCode int) {
	taskHandle.mutex.Lock()
	taskHandle.exitCode = &exitCode
	taskHandle.mutex.Unlock()
	taskHandle.session.Close()
	taskHandle.connection.Close()
	close(taskHandle.waitEndCh)
}

func (taskHandle *remoteTaskHandle) isTerminated() bool {
	select {
	case <-taskHandle.waitEndCh:
		return true
	default:
		return false
	}
}

// Stop terminates the remote task.
func (taskHandle *remoteTaskHandle) Stop() error {
	if taskHandle.isTerminated() {
		return nil
	}

	// Not every ssh server supports signals, closing the session hangs the command up anyway.
	if err := taskHandle.session.Signal(ssh.SIGKILL); err != nil {
		logrus.Debugf("Cannot send SIGKILL to remote task on %q: %v", taskHandle.host, err)
	}
	if !taskHandle.Wait(killGracePeriod) {
		taskHandle.session.Close()
		taskHandle.connection.Close()
		taskHandle.Wait(0)
	}
	return nil
}

// Status returns a state of the task.
func (taskHandle *remoteTaskHandle) Status() TaskState {
	if taskHandle.isTerminated() {
		return TERMINATED
	}
	return RUNNING
}

// ExitCode returns exit code of the terminated task.
func (taskHandle *remoteTaskHandle) ExitCode() (int, error) {
	if !taskHandle.isTerminated() {
		return -1, errors.New("task is not terminated")
	}
	taskHandle.mutex.Lock()
	defer taskHandle.mutex.Unlock()
	return *taskHandle.exitCode, nil
}

// StdoutFile returns a file handle for file to the task's stdout file.
func (taskHandle *remoteTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(taskHandle.stdoutFile)
}

// StderrFile returns a file handle for file to the task's stderr file.
func (taskHandle *remoteTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(taskHandle.stderrFile)
}

// Wait blocks until process is terminated or timeout appeared.
func (taskHandle *remoteTaskHandle) Wait(timeout time.Duration) bool {
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

// Clean closes local stdout & stderr files of the task.
func (taskHandle *remoteTaskHandle) Clean() error {
	return closeOutputFiles(taskHandle.stdoutFile, taskHandle.stderrFile)
}

// EraseOutput removes local directory with stdout & stderr files.
func (taskHandle *remoteTaskHandle) EraseOutput() error {
	return removeOutputDir(taskHandle.stdoutFile)
}

// Address returns address where task was located.
func (taskHandle *remoteTaskHandle) Address() string {
	return taskHandle.host
}
