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

// Package report stores benchmark and comparison results as JSON and markdown files.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/benchmark"
	"github.com/vafast/thunderbench/pkg/comparison"
	"github.com/vafast/thunderbench/pkg/visualization"
)

const (
	// DefaultBaseDir is used when storage has no base directory.
	DefaultBaseDir  = "reports"
	timestampLayout = "2006-01-02_15-04-05"
	tool            = "wrk"
)

// Storage saves every report into its own timestamped directory.
type Storage struct {
	BaseDir string
	// Version is stored in report metadata.
	Version string

	now func() time.Time
}

// NewStorage returns storage saving reports under baseDir.
func NewStorage(baseDir string) Storage {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return Storage{BaseDir: baseDir, now: time.Now}
}

// Metadata describes when and where report was generated.
type Metadata struct {
	Timestamp   string    `json:"timestamp"`
	GeneratedAt time.Time `json:"generatedAt"`
	Version     string    `json:"version,omitempty"`
	Tool        string    `json:"tool"`
	Hostname    string    `json:"hostname"`
	Platform    string    `json:"platform"`
	CPUs        int       `json:"cpus"`
	TotalGroups int       `json:"totalGroups,omitempty"`
	TotalTests  int       `json:"totalTests,omitempty"`
}

// BenchmarkReport is the content of report.json.
type BenchmarkReport struct {
	Metadata Metadata                   `json:"metadata"`
	Config   benchmark.BenchmarkConfig  `json:"config"`
	Result   *benchmark.BenchmarkResult `json:"result"`
}

// ComparisonReport is the content of comparison.json.
type ComparisonReport struct {
	Metadata Metadata           `json:"metadata"`
	Result   *comparison.Result `json:"result"`
}

func (s Storage) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s Storage) metadata(timestamp string) Metadata {
	hostname, err := os.Hostname()
	if err != nil {
		logrus.Debugf("Cannot get hostname: %v", err)
	}
	return Metadata{
		Timestamp:   timestamp,
		GeneratedAt: s.clock(),
		Version:     s.Version,
		Tool:        tool,
		Hostname:    hostname,
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		CPUs:        runtime.NumCPU(),
	}
}

func (s Storage) createDir() (dir, timestamp string, err error) {
	timestamp = s.clock().Format(timestampLayout)
	dir = filepath.Join(s.BaseDir, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", errors.Wrapf(err, "cannot create report directory %q", dir)
	}
	return dir, timestamp, nil
}

// Save writes report.json and report.md of a benchmark and returns report directory.
func (s Storage) Save(result *benchmark.BenchmarkResult, config benchmark.BenchmarkConfig) (string, error) {
	dir, timestamp, err := s.createDir()
	if err != nil {
		return "", err
	}

	metadata := s.metadata(timestamp)
	metadata.TotalGroups = len(config.Groups)
	for _, group := range config.Groups {
		metadata.TotalTests += len(group.Tests)
	}

	if err := writeJSON(filepath.Join(dir, "report.json"), BenchmarkReport{Metadata: metadata, Config: config, Result: result}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, "report.md"), BenchmarkMarkdown(result, config, metadata)); err != nil {
		return "", err
	}

	logrus.Infof("Report saved to %s", dir)
	return dir, nil
}

// SaveComparison writes comparison.json and comparison.md and returns report directory.
func (s Storage) SaveComparison(result *comparison.Result) (string, error) {
	dir, timestamp, err := s.createDir()
	if err != nil {
		return "", err
	}

	metadata := s.metadata(timestamp)
	if err := writeJSON(filepath.Join(dir, "comparison.json"), ComparisonReport{Metadata: metadata, Result: result}); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, "comparison.md"), ComparisonMarkdown(result, metadata)); err != nil {
		return "", err
	}

	logrus.Infof("Comparison report saved to %s", dir)
	return dir, nil
}

func writeJSON(path string, value interface{}) error {
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "cannot encode %q", path)
	}
	return writeFile(path, content)
}

func writeFile(path string, content []byte) error {
	if err := ioutil.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, "cannot write %q", path)
	}
	return nil
}

func environmentTable(metadata Metadata) *visualization.Table {
	table := visualization.NewTable([]string{"Item", "Value"}, nil)
	table.Append("Host", metadata.Hostname)
	table.Append("Platform", metadata.Platform)
	table.Append("CPUs", fmt.Sprint(metadata.CPUs))
	table.Append("Load generator", metadata.Tool)
	if metadata.Version != "" {
		table.Append("Version", metadata.Version)
	}
	return table
}

// BenchmarkMarkdown renders benchmark report as markdown.
func BenchmarkMarkdown(result *benchmark.BenchmarkResult, config benchmark.BenchmarkConfig, metadata Metadata) []byte {
	var md bytes.Buffer
	fmt.Fprintf(&md, "# %s\n\n", result.Name)
	if config.Description != "" {
		fmt.Fprintf(&md, "%s\n\n", config.Description)
	}
	fmt.Fprintf(&md, "Started %s, took %.2fs.\n\n", result.StartTime.Format(time.RFC3339), float64(result.DurationMs)/1000)

	fmt.Fprint(&md, "## Overview\n\n")
	visualization.DrawMarkdownTable(&md, visualization.OverviewTable(result.OverallStats))

	fmt.Fprint(&md, "\n## Groups\n\n")
	visualization.DrawMarkdownTable(&md, visualization.GroupsTable(result.Groups))

	for i, group := range result.Groups {
		if i < len(config.Groups) {
			groupConfig := config.Groups[i]
			fmt.Fprintf(&md, "\n### %s\n\n", group.Name)
			fmt.Fprintf(&md, "Mode: %s | threads: %d | connections: %d | duration: %ds", groupConfig.ExecutionMode,
				groupConfig.Threads, groupConfig.Connections, groupConfig.Duration)
			if groupConfig.Delay > 0 {
				fmt.Fprintf(&md, " | delay: %dms", groupConfig.Delay)
			}
			fmt.Fprint(&md, "\n\n")

			tests := visualization.NewTable([]string{"Case", "Method", "URL", "Weight"}, nil)
			for _, test := range groupConfig.Tests {
				tests.Append(test.Name, test.Request.Method, test.Request.URL, fmt.Sprintf("%v%%", test.Weight))
			}
			visualization.DrawMarkdownTable(&md, tests)
		}
	}

	fmt.Fprint(&md, "\n## Cases\n\n")
	visualization.DrawMarkdownTable(&md, visualization.CasesTable(result.Groups))

	fmt.Fprint(&md, "\n## Environment\n\n")
	visualization.DrawMarkdownTable(&md, environmentTable(metadata))
	fmt.Fprintf(&md, "\n---\n*Generated %s*\n", metadata.GeneratedAt.Format(time.RFC3339))
	return md.Bytes()
}

// ComparisonMarkdown renders comparison report as markdown.
func ComparisonMarkdown(result *comparison.Result, metadata Metadata) []byte {
	var md bytes.Buffer
	fmt.Fprintf(&md, "# %s\n\n", result.Name)
	if result.Description != "" {
		fmt.Fprintf(&md, "%s\n\n", result.Description)
	}
	fmt.Fprintf(&md, "Threads: %d | connections: %d | duration: %ds per target.\n\n", result.Config.Threads,
		result.Config.Connections, result.Config.Duration)

	fmt.Fprint(&md, "## Ranking\n\n")
	visualization.DrawMarkdownTable(&md, visualization.RankingTable(result.Ranking))
	if speedup, ok := visualization.Speedup(result.Ranking); ok {
		fmt.Fprintf(&md, "\n%s is %.2fx faster than %s.\n", result.Ranking[0].Name, speedup,
			result.Ranking[len(result.Ranking)-1].Name)
	}

	fmt.Fprint(&md, "\n## Targets\n\n")
	targets := visualization.NewTable([]string{"Target", "URL", "Requests", "Failed", "P50", "P95", "Max", "Transferred"}, nil)
	for _, target := range result.Targets {
		targets.Append(
			target.Name,
			target.URL,
			fmt.Sprint(target.Summary.TotalRequests),
			fmt.Sprint(target.Summary.FailedRequests),
			visualization.FormatMilliseconds(target.Summary.P50Latency),
			visualization.FormatMilliseconds(target.Summary.P95Latency),
			visualization.FormatMilliseconds(target.Summary.MaxLatency),
			visualization.FormatMegabytes(target.Summary.TransferTotal),
		)
	}
	visualization.DrawMarkdownTable(&md, targets)

	if len(result.Failures) > 0 {
		fmt.Fprint(&md, "\n## Not benchmarked\n\n")
		for _, failure := range result.Failures {
			fmt.Fprintf(&md, "- **%s**: %s\n", failure.Name, failure.Error)
		}
	}

	fmt.Fprint(&md, "\n## Environment\n\n")
	visualization.DrawMarkdownTable(&md, environmentTable(metadata))
	fmt.Fprintf(&md, "\n---\n*Generated %s*\n", metadata.GeneratedAt.Format(time.RFC3339))
	return md.Bytes()
}
