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

package benchmark

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads benchmark configuration from YAML or JSON file and validates it.
func LoadConfig(path string) (BenchmarkConfig, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return BenchmarkConfig{}, errors.Wrapf(err, "cannot read benchmark configuration %q", path)
	}

	config, err := ParseConfig(content)
	if err != nil {
		return BenchmarkConfig{}, errors.Wrapf(err, "invalid benchmark configuration %q", path)
	}
	return config, nil
}

// ParseConfig decodes YAML or JSON document into validated configuration.
func ParseConfig(content []byte) (BenchmarkConfig, error) {
	var config BenchmarkConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return BenchmarkConfig{}, &ConfigurationError{Message: err.Error()}
	}

	for i := range config.Groups {
		for j := range config.Groups[i].Tests {
			request := &config.Groups[i].Tests[j].Request
			request.Body = Normalize(request.Body)
			for key, value := range request.Query {
				request.Query[key] = Normalize(value)
			}
		}
	}

	if err := Validate(config); err != nil {
		return BenchmarkConfig{}, err
	}
	return config, nil
}

// Normalize converts YAML maps with interface keys into maps with string keys,
// so values can be encoded as JSON.
func Normalize(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(typed))
		for key, item := range typed {
			converted[fmt.Sprint(key)] = Normalize(item)
		}
		return converted
	case map[string]interface{}:
		for key, item := range typed {
			typed[key] = Normalize(item)
		}
		return typed
	case []interface{}:
		for i, item := range typed {
			typed[i] = Normalize(item)
		}
		return typed
	default:
		return value
	}
}
