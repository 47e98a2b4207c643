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

package metadata

import (
	"io/ioutil"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/utils/sysctl"
)

const (
	// CPUModelNameKey defines a key in the platform metrics map
	CPUModelNameKey = "cpu_model"
	// CPUCountKey defines a key in the platform metrics map
	CPUCountKey = "cpu_count"
	// KernelVersionKey defines a key in the platform metrics map
	KernelVersionKey = "kernel_version"
	// PlatformKey defines a key in the platform metrics map
	PlatformKey = "platform"
	// WrkVersionKey defines a key in the platform metrics map
	WrkVersionKey = "wrk_version"

	cpuInfoPath         = "/proc/cpuinfo"
	kernelReleaseSysctl = "kernel.osrelease"
)

// NetworkSysctls are kernel parameters limiting how many connections load generator can open.
var NetworkSysctls = []string{
	"net.core.somaxconn",
	"net.ipv4.ip_local_port_range",
	"net.ipv4.tcp_tw_reuse",
	"net.ipv4.tcp_max_syn_backlog",
	"fs.file-max",
}

// GetPlatformMetrics returns map of strings with platform metrics.
// If metric could not be retrieved value for the key is empty string.
func GetPlatformMetrics() map[string]string {
	platformMetrics := map[string]string{
		CPUCountKey: strconv.Itoa(runtime.NumCPU()),
		PlatformKey: runtime.GOOS + "/" + runtime.GOARCH,
	}

	item, err := CPUModelName()
	if err != nil {
		logrus.Warnf("GetPlatformMetrics: Failed to get %s metric. Skipping. Error: %s", CPUModelNameKey, err)
	}
	platformMetrics[CPUModelNameKey] = item

	item, err = KernelVersion()
	if err != nil {
		logrus.Warnf("GetPlatformMetrics: Failed to get %s metric. Skipping. Error: %s", KernelVersionKey, err)
	}
	platformMetrics[KernelVersionKey] = item

	tuning, err := sysctl.GetAll(NetworkSysctls...)
	if err != nil {
		logrus.Debugf("GetPlatformMetrics: %s", err)
	}
	for name, value := range tuning {
		platformMetrics[name] = value
	}

	return platformMetrics
}

// CPUModelName returns the first 'model name' of /proc/cpuinfo.
// Mixed cpu models are not supported.
func CPUModelName() (string, error) {
	content, err := ioutil.ReadFile(cpuInfoPath)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read %s", cpuInfoPath)
	}
	return parseCPUModelName(string(content))
}

func parseCPUModelName(cpuinfo string) (string, error) {
	for _, line := range strings.Split(cpuinfo, "\n") {
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		fields := strings.SplitN(line, ":", 2)
		if len(fields) == 2 {
			return strings.TrimSpace(fields[1]), nil
		}
	}
	return "", errors.New("no model name in cpuinfo")
}

// KernelVersion returns kernel release.
func KernelVersion() (string, error) {
	release, err := sysctl.Get(kernelReleaseSysctl)
	if err == nil {
		return release, nil
	}

	output, err := exec.Command("uname", "-r").Output()
	if err != nil {
		return "", errors.Wrap(err, "cannot get kernel release")
	}
	return strings.TrimSpace(string(output)), nil
}
