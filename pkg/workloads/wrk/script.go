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
	"bytes"
	"fmt"
	"io/ioutil"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Script describes a single HTTP request which wrk sends repeatedly.
type Script struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

var luaStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\x00", `\0`)

func luaString(value string) string {
	return `"` + luaStringEscaper.Replace(value) + `"`
}

// luaLongString wraps value in long brackets with level high enough to never be closed by value itself.
func luaLongString(value string) string {
	level := ""
	for strings.Contains(value, "]"+level+"]") {
		level += "="
	}
	return "[" + level + "[\n" + value + "]" + level + "]"
}

// requestTarget returns path with query of the URL, as sent in the request line.
func requestTarget(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid request URL %q", rawURL)
	}
	target := parsed.RequestURI()
	if target == "" {
		target = "/"
	}
	return target, nil
}

// Render returns Lua source of the script.
func (s Script) Render() (string, error) {
	target, err := requestTarget(s.URL)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, "-- %s %s\n\n", s.Method, s.URL)
	fmt.Fprintf(&buffer, "wrk.method = %s\n", luaString(s.Method))

	names := make([]string, 0, len(s.Headers))
	for name := range s.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&buffer, "wrk.headers[%s] = %s\n", luaString(name), luaString(s.Headers[name]))
	}

	if s.Body != "" {
		fmt.Fprintf(&buffer, "wrk.body = %s\n", luaLongString(s.Body))
	}

	fmt.Fprintf(&buffer, "\nfunction request()\n")
	if s.Body != "" {
		fmt.Fprintf(&buffer, "  return wrk.format(wrk.method, %s, wrk.headers, wrk.body)\n", luaString(target))
	} else {
		fmt.Fprintf(&buffer, "  return wrk.format(wrk.method, %s, wrk.headers)\n", luaString(target))
	}
	fmt.Fprintf(&buffer, "end\n")

	return buffer.String(), nil
}

// GenerateScript writes Lua script for wrk into given path.
func GenerateScript(path string, script Script) error {
	source, err := script.Render()
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, []byte(source), 0644); err != nil {
		return errors.Wrapf(err, "cannot write wrk script %q", path)
	}
	return nil
}
