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

// Package session prepares everything a command line run needs before load is generated:
// configuration, run identifier and directory, logging, executor and interrupt handling.
package session

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vafast/thunderbench/pkg/conf"
)

const (
	// ExUsage is exit code returned on wrong command line usage.
	ExUsage = 64
	// ExInterrupted is exit code returned when run was interrupted twice.
	ExInterrupted = 130

	logFileName     = "master.log"
	timestampFormat = "2006-01-02 15:04:05.100"
)

// Session is a single run of a command line program.
type Session struct {
	ID      string
	Dir     string
	LogFile *os.File
}

// New creates session with fresh identifier and its directory <tmp>/<app>/<id> holding master log.
func New(appName string) (*Session, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate run id")
	}
	return newInDir(path.Join(os.TempDir(), appName), id.String())
}

func newInDir(baseDir, id string) (*Session, error) {
	dir := path.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, errors.Wrapf(err, "cannot create run directory %q", dir)
	}

	logFile, err := os.OpenFile(path.Join(dir, logFileName), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create log file in %q", dir)
	}

	return &Session{ID: id, Dir: dir, LogFile: logFile}, nil
}

// SetupLogging sends logs both to master log and stderr.
func (s *Session) SetupLogging() {
	SetupLogging(io.MultiWriter(s.LogFile, os.Stderr))
}

// Close closes master log. Logs are sent to stderr afterwards.
func (s *Session) Close() error {
	logrus.SetOutput(os.Stderr)
	return s.LogFile.Close()
}

// String implements fmt.Stringer.
func (s *Session) String() string {
	return fmt.Sprintf("%s (%s)", s.ID, s.Dir)
}

// SetupLogging configures log format and output, using level from flags.
func SetupLogging(output io.Writer) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	logrus.SetOutput(output)
	logrus.SetLevel(conf.LogLevel())
}
