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

package wrk

import (
	"io/ioutil"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/executor"
	"github.com/vafast/thunderbench/pkg/utils/fs"
)

const (
	binaryName          = "wrk"
	availabilityTimeout = 10 * time.Second
)

var versionRegex = regexp.MustCompile(`wrk\s+(\S+)`)

// Lookup returns path to wrk binary. Binary bundled in `<binDir>/<os>-<arch>/wrk` takes
// precedence over the one found in PATH.
func Lookup(binDir string) (string, error) {
	if bundled, ok := fs.BundledBinaryPath(binDir, binaryName); ok {
		logrus.Debugf("Using bundled wrk binary %q", bundled)
		return bundled, nil
	}

	found, err := exec.LookPath(binaryName)
	if err != nil {
		return "", &WorkerNotFoundError{Path: binaryName, Err: err}
	}
	logrus.Debugf("Using wrk binary %q found in PATH", found)
	return found, nil
}

// CheckAvailability runs `wrk -v` once and returns reported version.
// wrk prints its version and usage with exit code 1, so both 0 and 1 prove that binary works.
func (w Wrk) CheckAvailability() (version string, err error) {
	command := executor.ShellJoin(w.config.Path, "-v")
	handle, err := w.executor.Execute(command)
	if err != nil {
		return "", &WorkerNotFoundError{Path: w.config.Path, Err: err}
	}
	defer handle.EraseOutput()
	defer handle.Clean()
	defer handle.Stop()

	if !handle.Wait(availabilityTimeout) {
		return "", &WorkerNotFoundError{Path: w.config.Path}
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return "", &WorkerNotFoundError{Path: w.config.Path, Err: err}
	}
	if exitCode != 0 && exitCode != 1 {
		executor.LogUnsucessfulExecution(command, w.executor.Name(), handle)
		return "", &WorkerNotFoundError{Path: w.config.Path}
	}

	// Version goes to stdout or stderr depending on wrk build.
	for _, open := range []func() (*os.File, error){handle.StdoutFile, handle.StderrFile} {
		if version := readVersion(open); version != "" {
			return version, nil
		}
	}
	return "unknown", nil
}

func readVersion(open func() (*os.File, error)) string {
	file, err := open()
	if err != nil {
		return ""
	}
	defer file.Close()

	output, err := ioutil.ReadAll(file)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(output), "\n") {
		if match := versionRegex.FindStringSubmatch(line); match != nil {
			return match[1]
		}
	}
	return ""
}
