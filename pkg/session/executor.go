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

package session

import (
	"os/user"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/conf"
	"github.com/vafast/thunderbench/pkg/executor"
)

var (
	remoteHostFlag = conf.NewStringFlag("remote_host", "Host on which load generator is run over SSH. Empty means local machine.", "")
	remotePortFlag = conf.NewIntFlag("remote_port", "SSH port of remote host.", executor.DefaultSSHPort)
	remoteUserFlag = conf.NewStringFlag("remote_user", "User logging into remote host. Empty means current user.", "")
)

// NewExecutor returns executor running load generator locally or, when remote host is
// configured, over SSH.
func NewExecutor() (executor.Executor, error) {
	host := remoteHostFlag.Value()
	if host == "" {
		return executor.NewLocal(), nil
	}

	account, err := lookupUser(remoteUserFlag.Value())
	if err != nil {
		return nil, err
	}

	sshConfig, err := executor.NewSSHConfig(host, remotePortFlag.Value(), account)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot prepare SSH connection to %q", host)
	}
	logrus.Debugf("Running load generator on %s:%d as %q", host, remotePortFlag.Value(), account.Username)
	return executor.NewRemote(*sshConfig), nil
}

func lookupUser(name string) (*user.User, error) {
	if name == "" {
		current, err := user.Current()
		return current, errors.Wrap(err, "cannot get current user")
	}
	account, err := user.Lookup(name)
	return account, errors.Wrapf(err, "cannot find user %q", name)
}
