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
	"testing"

	"github.com/open3fs/mockify/pkg/errors"
)

// Use starts p for the rest of the test and stops it in t.Cleanup. The test
// is failed immediately if p cannot be started.
func Use(t testing.TB, p *Patch) *Mock {
	t.Helper()
	m, err := p.Start(nil)
	if err != nil {
		t.Fatalf("start patch %s:\n%s", p, errors.StackTrace(err))
	}
	t.Cleanup(p.Stop)
	return m
}
