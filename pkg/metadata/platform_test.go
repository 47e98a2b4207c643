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

package metadata

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCPUModelName(t *testing.T) {
	Convey("When parsing cpuinfo", t, func() {
		Convey("First model name should be returned", func() {
			model, err := parseCPUModelName("processor\t: 0\nvendor_id\t: GenuineIntel\nmodel name\t: Intel(R) Xeon(R) CPU E5-2699 v4 @ 2.20GHz\n" +
				"processor\t: 1\nmodel name\t: Other\n")
			So(err, ShouldBeNil)
			So(model, ShouldEqual, "Intel(R) Xeon(R) CPU E5-2699 v4 @ 2.20GHz")
		})

		Convey("Missing model name should be an error", func() {
			_, err := parseCPUModelName("processor\t: 0\n")
			So(err, ShouldNotBeNil)
		})
	})
}
