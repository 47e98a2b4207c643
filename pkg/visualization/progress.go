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

package visualization

import (
	"fmt"
	"io"

	"github.com/vafast/thunderbench/pkg/benchmark"
	"gopkg.in/cheggaaa/pb.v1"
)

const progressBarWidth = 100

// ProgressBar shows progress of a benchmark run from engine events.
type ProgressBar struct {
	bar  *pb.ProgressBar
	done chan struct{}
}

// TrackProgress draws progress bar of total groups to output until events channel is closed.
func TrackProgress(events <-chan benchmark.Event, total int, output io.Writer) *ProgressBar {
	bar := pb.New(total)
	bar.Output = output
	bar.ManualUpdate = true
	bar.ShowCounters = false
	bar.ShowTimeLeft = true
	bar.SetWidth(progressBarWidth)
	bar.Start()

	progress := &ProgressBar{bar: bar, done: make(chan struct{})}
	go progress.consume(events)
	return progress
}

func (p *ProgressBar) consume(events <-chan benchmark.Event) {
	defer close(p.done)
	defer p.bar.Finish()

	for event := range events {
		p.bar.Prefix(fmt.Sprintf("[%02d / %02d] %s ", event.Progress.Completed, event.Progress.Total,
			event.Progress.GroupName))
		p.bar.Set(event.Progress.Completed)
		p.bar.Update()
	}
}

// Wait blocks until run ends and progress bar is finished.
func (p *ProgressBar) Wait() {
	<-p.done
}
