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

package benchmark

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"sync/atomic"

	"github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var unsafePathCharacters = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Workspace is a scratch directory owned by a single benchmark run.
// Generated request scripts live there until the run ends.
type Workspace struct {
	dir     string
	counter uint64
}

// NewWorkspace creates unique directory inside root. Empty root means os.TempDir().
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate workspace id")
	}

	dir := path.Join(root, "thunderbench-"+id.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "cannot create workspace %q", dir)
	}
	logrus.Debugf("Created workspace %q", dir)

	return &Workspace{dir: dir}, nil
}

// Dir returns workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// ScriptPath returns path for request script of a case. Every call returns new path,
// so concurrent cases never share a file even when their names collide after sanitizing.
func (w *Workspace) ScriptPath(group, test string) string {
	n := atomic.AddUint64(&w.counter, 1)
	name := fmt.Sprintf("%03d-%s-%s.lua", n,
		unsafePathCharacters.ReplaceAllString(group, "_"),
		unsafePathCharacters.ReplaceAllString(test, "_"))
	return path.Join(w.dir, name)
}

// Close removes workspace with all its files.
func (w *Workspace) Close() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.Wrapf(err, "cannot remove workspace %q", w.dir)
	}
	logrus.Debugf("Removed workspace %q", w.dir)
	return nil
}
