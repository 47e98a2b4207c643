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
	"path"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// TestLocal tests the execution of process on local machine.
func TestLocal(t *testing.T) {
	Convey("While using Local Shell", t, func() {
		testExecutor(t, NewLocal())
	})

	Convey("While using Local Shell with custom output directory", t, func() {
		outputDir, err := ioutil.TempDir("", "local_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)

		task, err := Local{OutputDir: outputDir}.Execute("echo custom")
		So(err, ShouldBeNil)
		So(task.Wait(0), ShouldBeTrue)

		stdout, err := task.StdoutFile()
		So(err, ShouldBeNil)
		stdout.Close()
		So(path.Dir(path.Dir(stdout.Name())), ShouldEqual, outputDir)
		So(task.Address(), ShouldEqual, "127.0.0.1")
	})

	Convey("While stopping a shell which spawned children", t, func() {
		task, err := NewLocal().Execute("sleep 300 & sleep 300; wait")
		So(err, ShouldBeNil)
		defer task.EraseOutput()
		defer task.Clean()

		So(task.Stop(), ShouldBeNil)
		So(task.Wait(time.Second), ShouldBeTrue)
		So(task.Status(), ShouldEqual, TERMINATED)
	})
}
