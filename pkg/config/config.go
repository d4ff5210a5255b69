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

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/open3fs/mockify/pkg/errors"
)

// defines environment variables read by Load.
const (
	EnvConfigFile = "MOCKIFY_CONFIG"
	EnvLogLevel   = "MOCKIFY_LOG_LEVEL"
	EnvDumpDepth  = "MOCKIFY_DUMP_DEPTH"
)

// Config is the runtime configuration of the patch package.
type Config struct {
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"logLevel"`
	// DumpDepth limits how deep recorded call arguments are printed in
	// assertion failures, 0 means unlimited.
	DumpDepth int `yaml:"dumpDepth"`
}

// NewConfigWithDefaults creates a new config with default values
func NewConfigWithDefaults() *Config {
	return &Config{
		LogLevel:  "warn",
		DumpDepth: 3,
	}
}

// SetValidate validates the config and normalizes its fields.
func (c *Config) SetValidate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.DumpDepth < 0 {
		return errors.Errorf("invalid dump depth: %d", c.DumpDepth)
	}
	return nil
}

// Level returns the parsed log level. It must be called after SetValidate.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// Load builds the config from defaults, the yaml file named by
// MOCKIFY_CONFIG and the MOCKIFY_* environment overrides, in that order.
func Load() (*Config, error) {
	cfg := NewConfigWithDefaults()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, errors.Trace(err)
	}
	if err := cfg.SetValidate(); err != nil {
		return nil, errors.Annotate(err, "validate mockify config")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Annotate(err, "open config file")
	}
	defer file.Close()
	if err = yaml.NewDecoder(file).Decode(c); err != nil {
		return errors.Annotatef(err, "decode config file %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if depth := os.Getenv(EnvDumpDepth); depth != "" {
		n, err := strconv.Atoi(depth)
		if err != nil {
			return errors.Annotatef(err, "parse %s", EnvDumpDepth)
		}
		c.DumpDepth = n
	}
	return nil
}
