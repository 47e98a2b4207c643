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

package comparison

import (
	"fmt"

	"github.com/pkg/errors"
)

// TargetUnreachableError means that target did not answer its health check in time.
// It fails benchmark of that target only.
type TargetUnreachableError struct {
	Target string
	URL    string
	Err    error
}

func (e *TargetUnreachableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("target %q is unreachable at %s", e.Target, e.URL)
	}
	return fmt.Sprintf("target %q is unreachable at %s: %v", e.Target, e.URL, e.Err)
}

// IsTargetUnreachable returns true when cause of err is TargetUnreachableError.
func IsTargetUnreachable(err error) bool {
	_, ok := errors.Cause(err).(*TargetUnreachableError)
	return ok
}
