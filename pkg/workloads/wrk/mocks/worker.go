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

package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vafast/thunderbench/pkg/workloads/wrk"
)

// Worker mock
type Worker struct {
	mock.Mock
}

// Invoke provides a mock function with given fields: request
func (_m *Worker) Invoke(request wrk.Request) (string, error) {
	ret := _m.Called(request)

	var r0 string
	if rf, ok := ret.Get(0).(func(wrk.Request) string); ok {
		r0 = rf(request)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(wrk.Request) error); ok {
		r1 = rf(request)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CheckAvailability provides a mock function with given fields:
func (_m *Worker) CheckAvailability() (string, error) {
	ret := _m.Called()
	return ret.String(0), ret.Error(1)
}

var _ wrk.Invoker = (*Worker)(nil)
