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

package fs

import (
	"os"
	"path"
	"runtime"
)

// PlatformIdentifier returns "<os>-<arch>" of the running binary, e.g. "linux-amd64".
// Bundled worker binaries are laid out per platform using this name.
func PlatformIdentifier() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// BundledBinaryPath returns path of binary bundled in binDir for current platform,
// in a form of `<binDir>/<os>-<arch>/<name>`. Second value is false when such file does not exist.
func BundledBinaryPath(binDir, name string) (string, bool) {
	if binDir == "" {
		return "", false
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binaryPath := path.Join(binDir, PlatformIdentifier(), name)
	info, err := os.Stat(binaryPath)
	if err != nil || info.IsDir() {
		return binaryPath, false
	}
	return binaryPath, true
}
