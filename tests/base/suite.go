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

package base

import (
	"fmt"

	"github.com/stretchr/testify/require"

	"github.com/open3fs/mockify/pkg/common"
	"github.com/open3fs/mockify/pkg/errors"
	"github.com/open3fs/mockify/pkg/patch"
)

// Suite is the base Suite for all test suites. Patches declared on a suite
// embedding it are started before each test and stopped after it.
type Suite struct {
	patch.Suite
}

// SetupSuite runs before all tests in the suite.
func (s *Suite) SetupSuite() {
}

// TearDownSuite runs after all tests in the suite.
func (s *Suite) TearDownSuite() {
}

// SetupTest runs before each test in the suite.
func (s *Suite) SetupTest() {
	s.Suite.SetupTest()
}

// TearDownTest runs after each test in the suite.
func (s *Suite) TearDownTest() {
	s.Suite.TearDownTest()
}

// Logf output to error log.
func (s *Suite) Logf(format string, a ...any) {
	s.T().Logf(format, a...)
}

// PrettyDump prints Golang objects in a beautiful way.
func (s *Suite) PrettyDump(a ...any) {
	common.PrettyDump(a...)
}

// R returns a require context.
func (s *Suite) R() *require.Assertions {
	return s.Require()
}

// NoError require no error, printing its stack trace otherwise.
func (s *Suite) NoError(err error, args ...any) {
	if err != nil {
		err = fmt.Errorf("%s", errors.StackTrace(err))
	}
	s.R().NoError(err, args...)
}

// Equal require equal
func (s *Suite) Equal(e, a any, msg ...any) {
	s.R().Equal(e, a, msg...)
}

// Nil require nil
func (s *Suite) Nil(object any, args ...any) {
	s.R().Nil(object, args...)
}

// NotNil require not nil
func (s *Suite) NotNil(object any, args ...any) {
	s.R().NotNil(object, args...)
}

// True require true
func (s *Suite) True(value bool, args ...any) {
	s.R().True(value, args...)
}

// False require false
func (s *Suite) False(value bool, args ...any) {
	s.R().False(value, args...)
}
