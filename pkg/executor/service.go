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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrServiceStopped is returned when service terminated before it was asked to.
var ErrServiceStopped = errors.New("service terminated prematurely")

// ServiceLauncher is a decorator for launchers of tasks which should not end on their own (servers).
type ServiceLauncher struct {
	Launcher
}

// Launch implements Launcher interface.
func (sl ServiceLauncher) Launch() (TaskHandle, error) {
	th, err := sl.Launcher.Launch()
	if err != nil {
		return nil, err
	}
	return ServiceHandle{TaskHandle: th, name: sl.Launcher.String()}, nil
}

// ServiceHandle is a decorator and TaskHandle implementation that should be used with tasks that do not stop on their own.
type ServiceHandle struct {
	TaskHandle
	name string
}

// Stop implements TaskHandle interface.
func (s ServiceHandle) Stop() error {
	if s.TaskHandle.Status() != RUNNING {
		logrus.Errorf("Stop(): service %s terminated prematurely", s.name)
		LogUnsucessfulExecution(s.name, "service", s.TaskHandle)
		return ErrServiceStopped
	}

	return s.TaskHandle.Stop()
}

// Wait implements TaskHandle interface.
func (s ServiceHandle) Wait(timeout time.Duration) bool {
	if s.TaskHandle.Status() != RUNNING {
		logrus.Errorf("Wait(): service %s terminated prematurely", s.name)
		LogUnsucessfulExecution(s.name, "service", s.TaskHandle)
	}

	return s.TaskHandle.Wait(timeout)
}
