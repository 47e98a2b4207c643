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
	"io/ioutil"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

// testExecutor tests the execution of process for given executor.
// This test can be used inside any Executor implementation test.
func testExecutor(t *testing.T, executor Executor) {
	logrus.SetLevel(logrus.ErrorLevel)

	Convey("When blocking infinitely sleep command is executed", func() {
		task, err := executor.Execute("sleep 300")
		So(err, ShouldBeNil)

		defer task.EraseOutput()
		defer task.Clean()
		defer task.Stop()

		Convey("Task should be still running and exit code should not be available", func() {
			So(task.Status(), ShouldEqual, RUNNING)
			_, err := task.ExitCode()
			So(err, ShouldNotBeNil)
		})

		Convey("When we wait for task termination with the 1ms timeout", func() {
			isTaskTerminated := task.Wait(1 * time.Millisecond)

			Convey("The timeout appears and the task should not be terminated", func() {
				So(isTaskTerminated, ShouldBeFalse)
				So(task.Status(), ShouldEqual, RUNNING)
			})
		})

		Convey("When we stop the task", func() {
			So(task.Stop(), ShouldBeNil)

			Convey("The task should be terminated and the exit code should indicate that task was killed", func() {
				So(task.Status(), ShouldEqual, TERMINATED)
				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldBeIn, -15, 143, remoteKilledExitCode)
			})

			Convey("Second stop should be a no-op", func() {
				So(task.Stop(), ShouldBeNil)
			})
		})

		Convey("When multiple go routines waits for task termination", func() {
			var wg sync.WaitGroup
			wg.Add(5)
			for i := 0; i < 5; i++ {
				go func() {
					task.Wait(0)
					wg.Done()
				}()
			}

			allWaitsAreDone := make(chan struct{})
			go func() {
				wg.Wait()
				close(allWaitsAreDone)
			}()

			Convey("All waits should be blocked until stop", func() {
				waitsDone := false
				select {
				case <-allWaitsAreDone:
					waitsDone = true
				case <-time.After(100 * time.Millisecond):
				}
				So(waitsDone, ShouldBeFalse)

				So(task.Stop(), ShouldBeNil)

				select {
				case <-allWaitsAreDone:
					waitsDone = true
				case <-time.After(time.Second):
				}
				So(waitsDone, ShouldBeTrue)
			})
		})
	})

	Convey("When command `echo output` is executed", func() {
		task, err := executor.Execute("echo output")
		So(err, ShouldBeNil)

		defer task.Stop()

		Convey("When we wait for the task to terminate", func() {
			So(task.Wait(0), ShouldBeTrue)

			Convey("The task should be terminated with exit code 0 and output 'output'", func() {
				So(task.Status(), ShouldEqual, TERMINATED)
				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldEqual, 0)

				stdout, err := task.StdoutFile()
				So(err, ShouldBeNil)
				defer stdout.Close()
				data, err := ioutil.ReadAll(stdout)
				So(err, ShouldBeNil)
				So(string(data), ShouldStartWith, "output")
			})

			Convey("EraseOutput should remove the stdout file", func() {
				stdout, err := task.StdoutFile()
				So(err, ShouldBeNil)
				stdout.Close()

				So(task.Clean(), ShouldBeNil)
				_, statErr := os.Stat(stdout.Name())
				So(statErr, ShouldBeNil)

				So(task.EraseOutput(), ShouldBeNil)
				_, statErr = os.Stat(stdout.Name())
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})

	Convey("When command which does not exist is executed", func() {
		task, err := executor.Execute("commandThatDoesNotExist")
		So(err, ShouldBeNil)

		defer task.EraseOutput()
		defer task.Clean()

		So(task.Wait(0), ShouldBeTrue)

		Convey("The exit code should be 127 and stderr should not be empty", func() {
			exitCode, err := task.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 127)

			stderr, err := task.StderrFile()
			So(err, ShouldBeNil)
			defer stderr.Close()
			data, err := ioutil.ReadAll(stderr)
			So(err, ShouldBeNil)
			So(string(data), ShouldNotBeEmpty)
		})
	})

	Convey("When we execute two tasks in the same time", func() {
		task, err := executor.Execute("echo output1")
		So(err, ShouldBeNil)
		task2, err := executor.Execute("echo output2")
		So(err, ShouldBeNil)

		defer task.EraseOutput()
		defer task2.EraseOutput()
		defer task.Clean()
		defer task2.Clean()

		task.Wait(0)
		task2.Wait(0)

		Convey("The commands stdouts need to match 'output1' & 'output2'", func() {
			for expected, handle := range map[string]TaskHandle{"output1": task, "output2": task2} {
				stdout, err := handle.StdoutFile()
				So(err, ShouldBeNil)
				data, err := ioutil.ReadAll(stdout)
				stdout.Close()
				So(err, ShouldBeNil)
				So(string(data), ShouldStartWith, expected)
			}
		})
	})
}
