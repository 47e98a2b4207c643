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

package comparison

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultStartupTimeout bounds waiting for a target to become healthy.
	DefaultStartupTimeout = 30 * time.Second
	// DefaultHealthCheckPath is requested when target does not set its own.
	DefaultHealthCheckPath = "/"
)

// Target is a compared HTTP server. When Command is set the server is started for the
// time of its benchmark with PORT environment variable set to Port.
type Target struct {
	Name            string `yaml:"name" json:"name"`
	Port            int    `yaml:"port,omitempty" json:"port,omitempty"`
	BaseURL         string `yaml:"baseUrl,omitempty" json:"baseUrl,omitempty"`
	HealthCheckPath string `yaml:"healthCheckPath,omitempty" json:"healthCheckPath,omitempty"`
	// StartupTimeout in milliseconds.
	StartupTimeout int    `yaml:"startupTimeout,omitempty" json:"startupTimeout,omitempty"`
	WarmupRequests int    `yaml:"warmupRequests,omitempty" json:"warmupRequests,omitempty"`
	Command        string `yaml:"command,omitempty" json:"command,omitempty"`
}

// ParseTarget parses target given as `name=url`.
func ParseTarget(value string) (Target, error) {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Target{}, errors.Errorf("target %q is not in name=url form", value)
	}

	parsed, err := url.Parse(parts[1])
	if err != nil {
		return Target{}, errors.Wrapf(err, "target %q has invalid url", parts[0])
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Target{}, errors.Errorf("target %q url %q must be absolute", parts[0], parts[1])
	}

	target := Target{Name: parts[0], BaseURL: strings.TrimSuffix(parts[1], "/")}
	if port := parsed.Port(); port != "" {
		target.Port, err = strconv.Atoi(port)
		if err != nil {
			return Target{}, errors.Wrapf(err, "target %q has invalid port", parts[0])
		}
	}
	return target, nil
}

// URL returns base URL of the target.
func (t Target) URL() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", t.Port)
}

// HealthURL returns URL polled until target is ready.
func (t Target) HealthURL() string {
	path := t.HealthCheckPath
	if path == "" {
		path = DefaultHealthCheckPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(t.URL(), "/") + path
}

// Address returns `host:port` of the target or empty string when it cannot be derived.
func (t Target) Address() string {
	parsed, err := url.Parse(t.URL())
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	port := parsed.Port()
	if port == "" {
		switch parsed.Scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		default:
			return ""
		}
	}
	return net.JoinHostPort(parsed.Hostname(), port)
}

func (t Target) startupTimeout() time.Duration {
	if t.StartupTimeout <= 0 {
		return DefaultStartupTimeout
	}
	return time.Duration(t.StartupTimeout) * time.Millisecond
}

// Lifecycle makes target ready to be benchmarked and releases it afterwards.
type Lifecycle interface {
	// Prepare returns TargetUnreachableError when target did not become healthy.
	Prepare(ctx context.Context, target Target) error
	Release(target Target) error
}
