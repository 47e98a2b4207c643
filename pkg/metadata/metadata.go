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

// Package metadata publishes run metadata and result summaries to Cassandra or InfluxDB.
package metadata

import (
	"fmt"
)

// Predefined kinds of metadata.
// Kind groups metadata by common characteristics: TypeFlags holds parameters passed to
// the program, TypeEnviron its environment variables and TypePlatform recorded platform
// characteristics like number of CPUs. Results are recorded with TypeResult and with
// GroupKind or TargetKind of every group and compared target.
const (
	TypeEmpty    = ""
	TypeFlags    = "flags"
	TypeEnviron  = "environ"
	TypePlatform = "platform"
	TypeResult   = "result"
)

// GroupKind returns kind of summary of a benchmark group.
func GroupKind(group string) string {
	return "group:" + group
}

// TargetKind returns kind of summary of a compared target.
func TargetKind(target string) string {
	return "target:" + target
}

// Metadata interface defines methods which must be supported by DB backend
type Metadata interface {
	// Record stores a key and value and associates with the run id.
	Record(key string, value string, kind string) error
	// RecordMap stores a key and value map and associates with the run id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrives single metadata type from the database.
	// Returns error if no kind or too many groups found.
	GetByKind(kind string) (map[string]string, error)
	// Clear deletes all metadata entries associated with the current run id.
	Clear() error
}

// Enabled tells whether any metadata database was chosen.
func Enabled() bool {
	return DatabaseFlag.Value() != "" && DatabaseFlag.Value() != "none"
}

// NewDefault initialize metadata object which is configured via flags or env. variables.
func NewDefault(runID string) (Metadata, error) {
	switch DatabaseFlag.Value() {
	case "cassandra":
		return NewCassandra(runID, DefaultCassandraConfig())
	case "influxdb":
		return NewInfluxDB(runID, DefaultInfluxDBConfig())
	}

	return nil, fmt.Errorf("unsupported database for metadata: %s", DatabaseFlag.Value())
}
