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

// Package errutil terminates command line programs on errors they cannot recover from.
package errutil

import (
	"github.com/sirupsen/logrus"
)

// Check logs the supplied error with its stack trace at debug level and exits if it is non-nil.
func Check(err error) {
	if err == nil {
		return
	}
	logrus.Debugf("%+v", err)
	logrus.WithError(err).Fatal("thunderbench cannot continue")
}

// CheckWithContext checks the error and exits if it is not nil.
// The formatted context is prepended to the logged message.
func CheckWithContext(err error, format string, args ...interface{}) {
	if err == nil {
		return
	}
	entry := logrus.WithError(err)
	logrus.Debugf("%+v", err)
	entry.Fatalf(format, args...)
}
