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
	"io/ioutil"
	"os"
	"path"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
	"github.com/vafast/thunderbench/pkg/executor"
	"github.com/vafast/thunderbench/pkg/executor/mocks"
	"github.com/vafast/thunderbench/pkg/utils/fs"
)

func outputFile(content string) *os.File {
	file, err := ioutil.TempFile("", "wrk_test")
	So(err, ShouldBeNil)
	_, err = file.WriteString(content)
	So(err, ShouldBeNil)
	So(file.Close(), ShouldBeNil)
	Reset(func() { os.Remove(file.Name()) })

	reopened, err := os.Open(file.Name())
	So(err, ShouldBeNil)
	return reopened
}

func TestCommand(t *testing.T) {
	Convey("When building wrk command", t, func() {
		w := New(executor.NewLocal(), Config{Path: "/opt/wrk"})
		request := Request{
			Threads:     4,
			Connections: 100,
			Duration:    30 * time.Second,
			ScriptPath:  "/tmp/ws/group-case.lua",
			URL:         "http://127.0.0.1:3000/api",
			Timeout:     10 * time.Second,
			Latency:     true,
		}

		Convey("All parameters should be passed", func() {
			So(w.Command(request), ShouldEqual,
				"/opt/wrk -t 4 -c 100 -d 30s -s /tmp/ws/group-case.lua --latency --timeout 10s http://127.0.0.1:3000/api")
		})

		Convey("Optional parameters should be skipped", func() {
			request.ScriptPath = ""
			request.Timeout = 0
			request.Latency = false
			So(w.Command(request), ShouldEqual, "/opt/wrk -t 4 -c 100 -d 30s http://127.0.0.1:3000/api")
		})

		Convey("Sub-second duration should be rounded up", func() {
			request.Duration = 1500 * time.Millisecond
			So(w.Command(request), ShouldContainSubstring, "-d 2s")
		})
	})
}

func TestInvoke(t *testing.T) {
	request := Request{Threads: 2, Connections: 10, Duration: time.Second, URL: "http://127.0.0.1:3000/"}

	Convey("When wrk ends successfully", t, func() {
		mockedExecutor := new(mocks.Executor)
		handle := new(mocks.TaskHandle)
		stdout := outputFile("  10 requests in 1.00s, 1.00KB read\n")

		mockedExecutor.On("Execute", mock.AnythingOfType("string")).Return(handle, nil).Once()
		mockedExecutor.On("Name").Return("mocked")
		handle.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
		handle.On("ExitCode").Return(0, nil)
		handle.On("StdoutFile").Return(stdout, nil)
		handle.On("StderrFile").Return(nil, errors.New("not needed"))
		handle.On("Address").Return("127.0.0.1")
		handle.On("Stop").Return(nil)
		handle.On("Clean").Return(nil)
		handle.On("EraseOutput").Return(nil)

		output, err := New(mockedExecutor, Config{Path: "wrk"}).Invoke(request)

		Convey("Output should be returned and task should be cleaned", func() {
			So(err, ShouldBeNil)
			So(output, ShouldContainSubstring, "10 requests")
			handle.AssertCalled(t, "Stop")
			handle.AssertCalled(t, "Clean")
			handle.AssertCalled(t, "EraseOutput")
		})
	})

	Convey("When wrk exits with non-zero exit code", t, func() {
		mockedExecutor := new(mocks.Executor)
		handle := new(mocks.TaskHandle)

		mockedExecutor.On("Execute", mock.AnythingOfType("string")).Return(handle, nil).Once()
		mockedExecutor.On("Name").Return("mocked")
		handle.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
		handle.On("ExitCode").Return(2, nil)
		handle.On("StdoutFile").Return(outputFile(""), nil)
		handle.On("StderrFile").Return(outputFile("unable to connect"), nil).Once()
		handle.On("StderrFile").Return(outputFile("unable to connect"), nil)
		handle.On("Address").Return("127.0.0.1")
		handle.On("Stop").Return(nil)
		handle.On("Clean").Return(nil)
		handle.On("EraseOutput").Return(nil)

		_, err := New(mockedExecutor, Config{Path: "wrk"}).Invoke(request)

		Convey("WorkerExecutionError with exit code and stderr should be returned", func() {
			So(IsWorkerExecution(err), ShouldBeTrue)
			executionError := errors.Cause(err).(*WorkerExecutionError)
			So(executionError.ExitCode, ShouldEqual, 2)
			So(executionError.Stderr, ShouldContainSubstring, "unable to connect")
			handle.AssertCalled(t, "EraseOutput")
		})
	})

	Convey("When wrk does not end in time", t, func() {
		mockedExecutor := new(mocks.Executor)
		handle := new(mocks.TaskHandle)

		mockedExecutor.On("Execute", mock.AnythingOfType("string")).Return(handle, nil).Once()
		mockedExecutor.On("Name").Return("mocked")
		handle.On("Wait", mock.AnythingOfType("time.Duration")).Return(false)
		handle.On("ExitCode").Return(-15, nil)
		handle.On("StdoutFile").Return(nil, errors.New("gone"))
		handle.On("StderrFile").Return(nil, errors.New("gone"))
		handle.On("Address").Return("127.0.0.1")
		handle.On("Stop").Return(nil)
		handle.On("Clean").Return(nil)
		handle.On("EraseOutput").Return(nil)

		_, err := New(mockedExecutor, Config{Path: "wrk", WaitGracePeriod: time.Millisecond}).Invoke(request)

		Convey("Process should be stopped and execution error returned", func() {
			So(IsWorkerExecution(err), ShouldBeTrue)
			handle.AssertCalled(t, "Stop")
		})
	})

	Convey("When wrk cannot be started", t, func() {
		mockedExecutor := new(mocks.Executor)
		mockedExecutor.On("Execute", mock.AnythingOfType("string")).Return(nil, errors.New("no such file")).Once()

		_, err := New(mockedExecutor, Config{Path: "wrk"}).Invoke(request)
		So(IsWorkerNotFound(err), ShouldBeTrue)
	})

	Convey("When request has no connections it should be rejected before start", t, func() {
		mockedExecutor := new(mocks.Executor)
		_, err := New(mockedExecutor, Config{Path: "wrk"}).Invoke(Request{Threads: 1, URL: "http://h"})
		So(err, ShouldNotBeNil)
		mockedExecutor.AssertNotCalled(t, "Execute", mock.Anything)
	})
}

// fakeWrk creates executable shell script printing given line and exiting with given code.
func fakeWrk(dir, line string, exitCode string) string {
	binaryPath := path.Join(dir, fs.PlatformIdentifier(), "wrk")
	So(os.MkdirAll(path.Dir(binaryPath), 0755), ShouldBeNil)
	script := "#!/bin/sh\necho '" + line + "'\nexit " + exitCode + "\n"
	So(ioutil.WriteFile(binaryPath, []byte(script), 0755), ShouldBeNil)
	return binaryPath
}

func TestBinary(t *testing.T) {
	Convey("With bundled wrk binary", t, func() {
		binDir, err := ioutil.TempDir("", "wrk_bin")
		So(err, ShouldBeNil)
		defer os.RemoveAll(binDir)

		Convey("Which prints usage and exits with 1", func() {
			bundled := fakeWrk(binDir, "wrk 4.2.0 [epoll] Copyright (C) 2012 Will Glozer", "1")

			Convey("Lookup should prefer it", func() {
				found, err := Lookup(binDir)
				So(err, ShouldBeNil)
				So(found, ShouldEqual, bundled)
				So(DefaultConfig(binDir).Path, ShouldEqual, bundled)
			})

			Convey("Availability check should pass and report version", func() {
				version, err := New(executor.NewLocal(), Config{Path: bundled}).CheckAvailability()
				So(err, ShouldBeNil)
				So(version, ShouldEqual, "4.2.0")
			})
		})

		Convey("Which fails with unexpected exit code availability check should fail", func() {
			bundled := fakeWrk(binDir, "broken", "3")
			_, err := New(executor.NewLocal(), Config{Path: bundled}).CheckAvailability()
			So(IsWorkerNotFound(err), ShouldBeTrue)
		})
	})

	Convey("Availability check of missing binary should fail", t, func() {
		_, err := New(executor.NewLocal(), Config{Path: "/nonexistent/wrk"}).CheckAvailability()
		So(IsWorkerNotFound(err), ShouldBeTrue)
	})
}
