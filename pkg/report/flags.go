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

package report

import (
	"github.com/vafast/thunderbench/pkg/conf"
)

var (
	// DirFlag is base directory of saved reports.
	DirFlag = conf.NewStringFlag("report_dir", "Directory where reports are saved.", DefaultBaseDir)
	// DisabledFlag turns saving of reports off.
	DisabledFlag = conf.NewBoolFlag("no_report", "Do not save report files.", false)
)
