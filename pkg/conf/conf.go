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

package conf

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

// EnvironmentPrefix is prepended to upper-cased flag name to build environment variable name.
const EnvironmentPrefix = "THUNDERBENCH"

var (
	app = kingpin.New("thunderbench", "No help available")
	// Default flags and values.
	logLevelFlag = NewStringFlag(
		"log",
		"Log level: debug, info, warn, error, fatal, panic",
		"info",
	)
	isEnvParsed = false
)

// SetHelp sets the help message for the CLI.
func SetHelp(help string) {
	app.Help = help
}

// SetAppName sets application name for CLI output.
func SetAppName(name string) {
	app.Name = name
}

// SetVersion adds --version flag printing version.
func SetVersion(version string) {
	app.Version(version)
}

// AppName returns specified app name.
func AppName() string {
	return app.Name
}

// LogLevel returns configured logLevel from input option or env variable.
// If it cannot parse the log level, it returns default value.
func LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(logLevelFlag.Value())
	if err == nil {
		return level
	}

	level, err = logrus.ParseLevel(logLevelFlag.defaultValue)
	if err == nil {
		return level
	}

	// Programmer error.
	panic(errors.Wrap(err, "parsing log level failed"))
}

// ParseFlags parse both the command line flags of the process and
// environment variables.
func ParseFlags() error {
	return parse(os.Args[1:], "command line flags")
}

// ParseEnv parse the environment for arguments.
func ParseEnv() error {
	return parse([]string{}, "environment flags")
}

func parse(args []string, what string) error {
	if _, err := app.Parse(args); err != nil {
		return errors.Wrapf(err, "could not parse %s", what)
	}
	isEnvParsed = true
	return nil
}

// FlagDefinition describes a registered flag with its current value.
type FlagDefinition struct {
	Name, Value, Default, Help string
}

// GetConfiguration returns definitions of all registered flags sorted by name.
func GetConfiguration() []FlagDefinition {
	names := make([]string, 0, len(definedFlags))
	for name := range definedFlags {
		names = append(names, name)
	}
	sort.Strings(names)

	definitions := make([]FlagDefinition, 0, len(names))
	for _, name := range names {
		flag := definedFlags[name]
		definitions = append(definitions, FlagDefinition{
			Name:    name,
			Value:   flag.valueString(),
			Default: flag.defaultString(),
			Help:    flag.help(),
		})
	}
	return definitions
}

// GetFlags returns flags as map with current values.
func GetFlags() map[string]string {
	flagsMap := map[string]string{}
	for _, definition := range GetConfiguration() {
		flagsMap[definition.Name] = definition.Value
	}
	return flagsMap
}

// DumpConfig dumps environment based configuration with current values of flags.
func DumpConfig() string {
	return DumpConfigMap(nil)
}

// DumpConfigMap dumps environment based configuration with current values overwritten by given flagMap.
// Includes "allexport" directives for bash.
func DumpConfigMap(flagMap map[string]string) string {
	buffer := &bytes.Buffer{}

	buffer.WriteString("# Export are values.\n")
	buffer.WriteString("set -o allexport\n")

	for _, definition := range GetConfiguration() {
		fmt.Fprintf(buffer, "\n# %s\n", definition.Help)
		if definition.Default != "" {
			fmt.Fprintf(buffer, "# Default: %s\n", definition.Default)
		}

		value := definition.Value
		if mapValue, ok := flagMap[definition.Name]; ok {
			value = mapValue
		}

		fmt.Fprintf(buffer, "%s=%v\n", envName(definition.Name), value)
	}

	buffer.WriteString("set +o allexport")
	return buffer.String()
}

func envName(flagName string) string {
	return fmt.Sprintf("%s_%s", EnvironmentPrefix, strings.ToUpper(flagName))
}
