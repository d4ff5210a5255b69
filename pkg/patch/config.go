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

package patch

import (
	"github.com/open3fs/mockify/pkg/common"
	"github.com/open3fs/mockify/pkg/config"
	"github.com/open3fs/mockify/pkg/errors"
	"github.com/open3fs/mockify/pkg/log"
)

// Configure applies cfg to the package logger and to assertion dumps.
func Configure(cfg *config.Config) error {
	if err := cfg.SetValidate(); err != nil {
		return errors.Trace(err)
	}
	log.SetLevel(cfg.Level())
	common.SetDumpDepth(cfg.DumpDepth)
	return nil
}

func init() {
	cfg, err := config.Load()
	if err == nil {
		err = Configure(cfg)
	}
	if err != nil {
		log.Logger.Warnf("Failed to load mockify config, using defaults: %s", err)
	}
}
