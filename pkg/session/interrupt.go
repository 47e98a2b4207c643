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

package session

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/executor"
)

// WithInterrupt returns context cancelled on first SIGINT or SIGTERM, so the run stops
// after current group. Second signal stops all started tasks and exits.
// Returned function stops tasks which are still running and must be called at the end of run.
func WithInterrupt(parent context.Context) (context.Context, func()) {
	return withSignals(parent, func() { os.Exit(ExInterrupted) })
}

func withSignals(parent context.Context, exit func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	stopAll := executor.TrackTaskHandles()

	signals := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-signals:
			logrus.Warnf("Received %v, stopping after current group. Repeat to abort immediately.", sig)
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-signals:
			logrus.Errorf("Received %v again, aborting", sig)
			stopAll()
			exit()
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		close(done)
		cancel()
		stopAll()
	}
}
