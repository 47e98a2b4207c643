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

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/vafast/thunderbench/pkg/conf"
	"github.com/vafast/thunderbench/pkg/metadata"
	"github.com/vafast/thunderbench/pkg/utils/errutil"
	"github.com/vafast/thunderbench/pkg/visualization"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	viewer = kingpin.New("results-viewer", "Simple command-line tool for viewing results recorded in metadata database. "+
		"Database is chosen with THUNDERBENCH_METADATA_DB and related environment variables.")

	showCmd = viewer.Command("show", "Show metadata recorded for a run.")
	runID   = showCmd.Arg("run_id", "Run ID").Required().String()
	kinds   = showCmd.Flag("kind", "Kind of metadata, e.g. result, platform, group:<name> or target:<name>. May be repeated.").
		Default(metadata.TypeResult, metadata.TypePlatform).Strings()
)

func kindTable(values map[string]string) *visualization.Table {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	table := visualization.NewTable([]string{"Key", "Value"}, nil)
	for _, key := range keys {
		table.Append(key, values[key])
	}
	return table
}

func showRun() {
	if !metadata.Enabled() {
		errutil.CheckWithContext(fmt.Errorf("metadata database is not configured"), "Cannot show run %q", *runID)
	}
	m, err := metadata.NewDefault(*runID)
	errutil.CheckWithContext(err, "Cannot connect to metadata database")

	for _, kind := range *kinds {
		values, err := m.GetByKind(kind)
		errutil.CheckWithContext(err, "Cannot read %q of run %q", kind, *runID)
		fmt.Printf("\n%s\n", kind)
		visualization.DrawTable(os.Stdout, kindTable(values))
	}
}

func main() {
	errutil.CheckWithContext(conf.ParseEnv(), "Cannot parse environment")

	switch kingpin.MustParse(viewer.Parse(os.Args[1:])) {
	case showCmd.FullCommand():
		showRun()
	}
}
