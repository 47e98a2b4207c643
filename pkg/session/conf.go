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
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/conf"
	"github.com/vafast/thunderbench/pkg/metadata"
	"github.com/vafast/thunderbench/pkg/utils/errutil"
)

var (
	dumpConfigFlag = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)
	// Name includes dash so it is excluded from dumping.
	dumpConfigRunIDFlag = conf.NewStringFlag("config-dump-run-id", "Dump configuration recorded in metadata for given run ID.", "")
)

// Configure parses flags and sets log level. When configuration dump was requested
// it is printed to stdout and program exits.
func Configure() {
	err := conf.ParseFlags()
	if err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		fmt.Println(dumpConfig(dumpConfigRunIDFlag.Value()))
		os.Exit(0)
	}
}

func dumpConfig(previousRunID string) string {
	if previousRunID == "" {
		return conf.DumpConfig()
	}

	m, err := metadata.NewDefault(previousRunID)
	errutil.CheckWithContext(err, "Cannot connect to metadata database")
	flags, err := m.GetByKind(metadata.TypeFlags)
	errutil.CheckWithContext(err, "Cannot read flags of run %q", previousRunID)
	return conf.DumpConfigMap(flags)
}
