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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/conf"
	"github.com/vafast/thunderbench/pkg/metadata"
	"github.com/vafast/thunderbench/pkg/report"
	"github.com/vafast/thunderbench/pkg/session"
	"github.com/vafast/thunderbench/pkg/utils/errutil"
	"github.com/vafast/thunderbench/pkg/visualization"
	"github.com/vafast/thunderbench/pkg/workloads/wrk"
)

const (
	appName = "thunderbench"
	version = "1.0.0"
)

var (
	configFlag          = conf.NewStringFlag("config", "Benchmark configuration file (YAML or JSON).", "benchmark.yaml")
	interGroupDelayFlag = conf.NewDurationFlag("inter_group_delay", "Delay after sequential group which does not set its own.", benchmark.DefaultInterGroupDelay)
)

func main() {
	conf.SetAppName(appName)
	conf.SetVersion(version)
	conf.SetHelp(`Runs groups of HTTP load tests described in configuration file with wrk and reports merged statistics.`)
	session.Configure()

	run, err := session.New(appName)
	errutil.CheckWithContext(err, "Cannot create run directory")
	defer run.Close()
	run.SetupLogging()
	logrus.Infof("Starting %s %s, run %s", appName, version, run)

	config, err := benchmark.LoadConfig(configFlag.Value())
	errutil.CheckWithContext(err, "Cannot load benchmark configuration")

	exec, err := session.NewExecutor()
	errutil.CheckWithContext(err, "Cannot prepare executor")
	worker := wrk.New(exec, wrk.ConfigFromFlags())
	wrkVersion, err := worker.CheckAvailability()
	errutil.CheckWithContext(err, "wrk is not available")

	var meta metadata.Metadata
	if metadata.Enabled() {
		meta, err = metadata.NewDefault(run.ID)
		errutil.CheckWithContext(err, "Cannot connect to metadata database")
		errutil.CheckWithContext(metadata.RecordRuntimeEnv(meta, time.Now(), wrkVersion), "Cannot save run metadata")
	}

	ctx, stop := session.WithInterrupt(context.Background())
	defer stop()

	engine := benchmark.NewEngine(config, worker)
	engine.WorkspaceRoot = run.Dir
	engine.InterGroupDelay = interGroupDelayFlag.Value()

	var progress *visualization.ProgressBar
	// Progress bar would be mixed with logs on other levels.
	if logrus.GetLevel() == logrus.ErrorLevel {
		progress = visualization.TrackProgress(engine.Subscribe(), len(config.Groups), os.Stdout)
	}

	result, err := engine.Run(ctx)
	if progress != nil {
		progress.Wait()
	}
	errutil.CheckWithContext(err, "Benchmark %q failed", config.Name)

	visualization.PrintBenchmarkResult(os.Stdout, result)

	if !report.DisabledFlag.Value() {
		storage := report.NewStorage(report.DirFlag.Value())
		storage.Version = version
		dir, err := storage.Save(result, config)
		errutil.CheckWithContext(err, "Cannot save report")
		fmt.Printf("\nReport saved to %s\n", dir)
	}

	if meta != nil {
		errutil.CheckWithContext(metadata.RecordResult(meta, result), "Cannot save results to metadata database")
	}
	visualization.PrintRunMetadata(os.Stdout, run.ID, run.Dir)
}
