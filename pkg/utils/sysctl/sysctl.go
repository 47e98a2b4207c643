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

// Package sysctl reads kernel parameters from /proc/sys.
package sysctl

import (
	"io/ioutil"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const sysctlRoot = "/proc/sys"

// Get returns the value of the sysctl key specified by name.
func Get(name string) (string, error) {
	// "net.ipv4.tcp_syncookies" translates into "/proc/sys/net/ipv4/tcp_syncookies"
	sysctlPath := path.Join(sysctlRoot, strings.Replace(name, ".", "/", -1))

	content, err := ioutil.ReadFile(sysctlPath)
	if err != nil {
		return "", errors.Wrapf(err, "cannot read sysctl %q", name)
	}
	// Multi-value parameters like ip_local_port_range are separated with tabs.
	return strings.Join(strings.Fields(string(content)), " "), nil
}

// GetAll reads every named parameter. Parameters which cannot be read are left out
// and reported in returned error.
func GetAll(names ...string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	var failed []string
	for _, name := range names {
		value, err := Get(name)
		if err != nil {
			failed = append(failed, name)
			continue
		}
		values[name] = value
	}
	if len(failed) > 0 {
		return values, errors.Errorf("cannot read sysctl %s", strings.Join(failed, ", "))
	}
	return values, nil
}
