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

package executor

import (
	"strings"
)

// ShellQuote quotes single argument for POSIX shell, so it is passed as one word
// no matter which characters it contains.
func ShellQuote(argument string) string {
	if argument == "" {
		return "''"
	}
	if strings.IndexFunc(argument, needsQuoting) == -1 {
		return argument
	}
	return "'" + strings.Replace(argument, "'", `'"'"'`, -1) + "'"
}

// ShellJoin quotes all arguments and joins them into one command line.
func ShellJoin(arguments ...string) string {
	quoted := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		quoted = append(quoted, ShellQuote(argument))
	}
	return strings.Join(quoted, " ")
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("-_./:=@%+,", r)
}
