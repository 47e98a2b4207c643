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
	"github.com/vafast/thunderbench/pkg/conf"
)

var (
	// PathFlag overrides looked up wrk binary.
	PathFlag = conf.NewStringFlag("wrk_path", "Path to wrk binary. Empty means lookup in bundled binaries and PATH.", "")
	// BinDirFlag is a directory with bundled binaries laid out as <os>-<arch>/wrk.
	BinDirFlag = conf.NewStringFlag("wrk_bin_dir", "Directory with bundled wrk binaries.", "bin")
)

// ConfigFromFlags returns DefaultConfig with binary chosen by flags.
func ConfigFromFlags() Config {
	config := DefaultConfig(BinDirFlag.Value())
	if path := PathFlag.Value(); path != "" {
		config.Path = path
	}
	return config
}
