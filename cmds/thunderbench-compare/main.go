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
	"github.com/vafast/thunderbench/pkg/comparison"
	"github.com/vafast/thunderbench/pkg/conf"
	"github.com/vafast/thunderbench/pkg/executor"
	"github.com/vafast/thunderbench/pkg/metadata"
	"github.com/vafast/thunderbench/pkg/report"
	"github.com/vafast/thunderbench/pkg/session"
	"github.com/vafast/thunderbench/pkg/utils/errutil"
	"github.com/vafast/thunderbench/pkg/visualization"
	"github.com/vafast/thunderbench/pkg/workloads/wrk"
)

const (
	appName = "thunderbench-compare"
	version = "1.0.0"
)

var (
	scenariosFlag   = conf.NewStringFlag("scenarios", "Comparison configuration file with scenarios and optionally targets.", "comparison.yaml")
	targetsFlag     = conf.NewSliceFlag("target", "Compared target as name=url. Overrides targets from scenarios file.")
	threadsFlag     = conf.NewIntFlag("compare_threads", "Overrides number of wrk threads. 0 keeps value from file.", 0)
	connectionsFlag = conf.NewIntFlag("compare_connections", "Overrides number of connections. 0 keeps value from file.", 0)
	durationFlag    = conf.NewIntFlag("compare_duration", "Overrides duration in seconds. 0 keeps value from file.", 0)
)

func loadConfig() (comparison.Config, []comparison.Target, error) {
	config, err := comparison.LoadConfig(scenariosFlag.Value())
	if err != nil {
		return config, nil, err
	}
	if threadsFlag.Value() > 0 {
		config.Threads = threadsFlag.Value()
	}
	if connectionsFlag.Value() > 0 {
		config.Connections = connectionsFlag.Value()
	}
	if durationFlag.Value() > 0 {
		config.Duration = durationFlag.Value()
	}

	targets := config.Targets
	if values := targetsFlag.Value(); len(values) > 0 {
		targets = make([]comparison.Target, 0, len(values))
		for _, value := range values {
			target, err := comparison.ParseTarget(value)
			if err != nil {
				return config, nil, err
			}
			targets = append(targets, target)
		}
	}
	return config, targets, comparison.Validate(config)
}

func main() {
	conf.SetAppName(appName)
	conf.SetVersion(version)
	conf.SetHelp(`Benchmarks several HTTP servers with the same scenarios and ranks them by throughput.`)
	session.Configure()

	run, err := session.New(appName)
	errutil.CheckWithContext(err, "Cannot create run directory")
	defer run.Close()
	run.SetupLogging()
	logrus.Infof("Starting %s %s, run %s", appName, version, run)

	config, targets, err := loadConfig()
	errutil.CheckWithContext(err, "Cannot load comparison configuration")

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

	// Compared servers always run next to this program, only load generator may be remote.
	launcher := comparison.NewLauncher(executor.NewLocal(), comparison.NewHTTPProbe())
	orchestrator := comparison.NewOrchestrator(config, worker, launcher)
	orchestrator.WorkspaceRoot = run.Dir
	if logrus.GetLevel() == logrus.ErrorLevel {
		orchestrator.OnEngine = func(target comparison.Target, engine *benchmark.Engine) {
			fmt.Printf("\n%s (%s)\n", target.Name, target.URL())
			visualization.TrackProgress(engine.Subscribe(), 1, os.Stdout)
		}
	}

	result, err := orchestrator.Run(ctx, targets)
	errutil.CheckWithContext(err, "Comparison %q failed", config.Name)

	visualization.PrintRanking(os.Stdout, result)

	if !report.DisabledFlag.Value() {
		storage := report.NewStorage(report.DirFlag.Value())
		storage.Version = version
		dir, err := storage.SaveComparison(result)
		errutil.CheckWithContext(err, "Cannot save comparison report")
		fmt.Printf("\nReport saved to %s\n", dir)
	}

	if meta != nil {
		errutil.CheckWithContext(metadata.RecordComparison(meta, result), "Cannot save results to metadata database")
	}
	visualization.PrintRunMetadata(os.Stdout, run.ID, run.Dir)
}
