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

package precheck

import (
	"os/exec"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFunction(t *testing.T) {
	requiredExecutables := []string{
		// load generator
		"wrk",
		// executor
		"sh",
	}

	Convey("Make sure all dependencies are there", t, func() {
		for _, executable := range requiredExecutables {
			path, err := exec.LookPath(executable)
			So(err, ShouldBeNil)
			Println()
			Printf("%s found in %s", executable, path)
		}
	})
}
