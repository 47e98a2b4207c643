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
	"github.com/vafast/thunderbench/pkg/stats"
)

// Progress tells how many groups of a run are done.
type Progress struct {
	GroupName  string  `json:"groupName"`
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Event is published after every completed group.
type Event struct {
	Progress Progress `json:"progress"`
	// Snapshot merges statistics of all groups completed so far.
	Snapshot stats.DetailedStats `json:"snapshot"`
}

// subscribers is a list of event channels, each owned by one consumer.
type subscribers struct {
	channels []chan Event
}

func (s *subscribers) add(buffer int) <-chan Event {
	channel := make(chan Event, buffer)
	s.channels = append(s.channels, channel)
	return channel
}

// publish does not block; consumer which does not keep up loses events.
func (s *subscribers) publish(event Event) (dropped int) {
	for _, channel := range s.channels {
		select {
		case channel <- event:
		default:
			dropped++
		}
	}
	return dropped
}

func (s *subscribers) close() {
	for _, channel := range s.channels {
		close(channel)
	}
	s.channels = nil
}
