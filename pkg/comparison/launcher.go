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
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/executor"
	"github.com/vafast/thunderbench/pkg/utils/err_collection"
	"github.com/vafast/thunderbench/pkg/utils/netutil"
)

// Launcher starts target commands with an executor and waits for them with a probe.
// Targets without command are only probed.
type Launcher struct {
	executor executor.Executor
	probe    *HTTPProbe
	// IsListening checks that started target accepts connections before its health check is polled.
	IsListening netutil.IsListeningFunction

	mutex   sync.Mutex
	handles map[string]executor.TaskHandle
}

// NewLauncher returns launcher running targets with given executor.
func NewLauncher(exec executor.Executor, probe *HTTPProbe) *Launcher {
	return &Launcher{
		executor:    exec,
		probe:       probe,
		IsListening: netutil.IsListening,
		handles:     make(map[string]executor.TaskHandle),
	}
}

func targetCommand(target Target) string {
	if target.Port > 0 {
		return fmt.Sprintf("PORT=%d %s", target.Port, target.Command)
	}
	return target.Command
}

// Prepare implements Lifecycle interface.
func (l *Launcher) Prepare(ctx context.Context, target Target) error {
	if target.Command != "" {
		launcher := executor.ServiceLauncher{Launcher: executor.NewCommandLauncher(l.executor, targetCommand(target))}
		handle, err := launcher.Launch()
		if err != nil {
			return errors.Wrapf(err, "cannot start target %q", target.Name)
		}
		l.mutex.Lock()
		l.handles[target.Name] = handle
		l.mutex.Unlock()
		logrus.Infof("Started target %q: %s", target.Name, launcher)

		if address := target.Address(); address != "" && !l.IsListening(address, target.startupTimeout()) {
			l.release(target)
			return &TargetUnreachableError{Target: target.Name, URL: address,
				Err: errors.New("nothing listens on target address")}
		}
	}

	if err := l.probe.Prepare(ctx, target); err != nil {
		l.release(target)
		return err
	}
	return nil
}

// Release implements Lifecycle interface.
func (l *Launcher) Release(target Target) error {
	if err := l.probe.Release(target); err != nil {
		return err
	}
	return l.release(target)
}

func (l *Launcher) release(target Target) error {
	l.mutex.Lock()
	handle, ok := l.handles[target.Name]
	delete(l.handles, target.Name)
	l.mutex.Unlock()
	if !ok {
		return nil
	}

	var errs errcollection.ErrorCollection
	errs.Add(handle.Stop())
	errs.Add(handle.Clean())
	errs.Add(handle.EraseOutput())
	if err := errs.GetErrIfAny(); err != nil {
		return errors.Wrapf(err, "cannot release target %q", target.Name)
	}
	logrus.Debugf("Stopped target %q", target.Name)
	return nil
}
