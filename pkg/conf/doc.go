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

/*
Package conf is a helper for thunderbench configuration for both command line interface
and environment variables.

Every flag registered through this package can be given as `--name value` or as
THUNDERBENCH_NAME environment variable. By default it registers:

	--log / THUNDERBENCH_LOG  Log level: debug, info, warn, error, fatal, panic. Default: info

ParseEnv parses environment variables only and can be run multiple times.
ParseFlags parses both command line and environment and should be run once, after all packages
registered their flags, so --help shows the whole configuration.

DumpConfig renders current configuration as shell snippet which can be sourced back.
*/
package conf
