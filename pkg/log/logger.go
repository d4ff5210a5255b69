// Copyright 2025 Open3FS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// defines logger field keys.
const (
	FieldKeyPatch      = "PATCH"
	FieldKeyActivation = "ACTIVATION"
	FieldKeySuite      = "SUITE"
)

// Interface is the interface of logger.
type Interface interface {
	Subscribe(key, val string) Interface

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var _ Interface = new(logger)

// Logger is the global logger.
var Logger Interface

// root is the logrus instance shared by every subscribed logger.
var root *logrus.Logger

type logger struct {
	*logrus.Logger
	fields logrus.Fields
}

// Debugf logs a message at level Debug.
func (l *logger) Debugf(format string, args ...any) {
	l.WithFields(l.fields).Debugf(format, args...)
}

// Infof logs a message at level Info.
func (l *logger) Infof(format string, args ...any) {
	l.WithFields(l.fields).Infof(format, args...)
}

// Warnf logs a message at level Warn.
func (l *logger) Warnf(format string, args ...any) {
	l.WithFields(l.fields).Warnf(format, args...)
}

// Errorf logs a message at level Error.
func (l *logger) Errorf(format string, args ...any) {
	l.WithFields(l.fields).Errorf(format, args...)
}

// Subscribe adds a field base on current logger and returns a new logger.
func (l *logger) Subscribe(key, val string) Interface {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = val
	return &logger{
		Logger: l.Logger,
		fields: fields,
	}
}

// InitLogger initializes the global logger writing to out.
func InitLogger(level logrus.Level, out io.Writer) {
	root = &logrus.Logger{
		Out:          out,
		Formatter:    new(logrus.TextFormatter),
		Hooks:        make(logrus.LevelHooks),
		Level:        level,
		ExitFunc:     os.Exit,
		ReportCaller: false,
	}
	Logger = &logger{
		Logger: root,
		fields: logrus.Fields{},
	}
}

// SetLevel changes the level of the global logger.
func SetLevel(level logrus.Level) {
	root.SetLevel(level)
}

// ParseLevel wraps logrus.ParseLevel; an empty name means warn.
func ParseLevel(name string) (logrus.Level, error) {
	if name == "" {
		return logrus.WarnLevel, nil
	}
	return logrus.ParseLevel(name)
}

func init() {
	InitLogger(logrus.WarnLevel, os.Stderr)
}
