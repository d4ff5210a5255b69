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
	"fmt"
	"reflect"

	"github.com/stretchr/testify/suite"

	"github.com/open3fs/mockify/pkg/errors"
	"github.com/open3fs/mockify/pkg/log"
)

// TagName is the struct tag binding a *Mock field to a *Patch field.
const TagName = "patch"

var (
	patchType      = reflect.TypeOf((*Patch)(nil))
	mockType       = reflect.TypeOf((*Mock)(nil))
	suiteType      = reflect.TypeOf((*Suite)(nil)).Elem()
	testifySuiteTy = reflect.TypeOf((*suite.Suite)(nil)).Elem()
)

// Suite is a testify suite that starts the patches declared on it before
// each test and stops them after it.
//
// Every exported, non-nil *Patch field of the suite (embedded structs
// included) is started in declaration order in SetupTest and stopped in
// reverse order in TearDownTest. Suites overriding SetupTest or
// TearDownTest must call the embedded methods.
type Suite struct {
	suite.Suite

	self    suite.TestingSuite
	started []*binding
}

// SetS records the running suite so its fields can be inspected.
func (s *Suite) SetS(ts suite.TestingSuite) {
	s.Suite.SetS(ts)
	s.self = ts
}

// SetupTest starts the declared patches. A patch that fails to start fails
// the test before its body runs.
func (s *Suite) SetupTest() {
	bindings, err := collect(s.self)
	if err != nil {
		s.Require().FailNow("collect patches", errors.StackTrace(err))
	}
	for _, b := range bindings {
		m, err := b.patch.Start(s.self)
		if err != nil {
			s.Require().FailNow(fmt.Sprintf("start patch %s", b.patch), errors.StackTrace(err))
		}
		s.started = append(s.started, b)
		b.bind(m)
	}
}

// TearDownTest stops the started patches, last started first.
func (s *Suite) TearDownTest() {
	for i := len(s.started) - 1; i >= 0; i-- {
		b := s.started[i]
		b.patch.Stop()
		b.bind(nil)
	}
	s.started = nil
}

// binding is a declared patch and the optional field receiving its handle.
type binding struct {
	patch *Patch
	field reflect.Value
}

func (b *binding) bind(m *Mock) {
	if b.field.IsValid() {
		b.field.Set(reflect.ValueOf(m))
	}
}

type taggedField struct {
	patchName string
	fieldName string
	v         reflect.Value
}

type collector struct {
	log      log.Interface
	declared map[string]bool
	byName   map[string]*binding
	bindings []*binding
	tagged   []taggedField
}

// Collect returns the patches declared on the test instance self, a pointer
// to a struct, in declaration order.
func Collect(self any) ([]*Patch, error) {
	bindings, err := collect(self)
	if err != nil {
		return nil, err
	}
	patches := make([]*Patch, len(bindings))
	for i, b := range bindings {
		patches[i] = b.patch
	}
	return patches, nil
}

func collect(self any) ([]*binding, error) {
	v := reflect.ValueOf(self)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return nil, errors.New("no test instance, run the suite with suite.Run")
	}
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("test instance must be a pointer to a struct, got %T", self)
	}
	c := &collector{
		log:      log.Logger.Subscribe(log.FieldKeySuite, describe(self)),
		declared: make(map[string]bool),
		byName:   make(map[string]*binding),
	}
	if err := c.walk(v.Elem()); err != nil {
		return nil, err
	}
	for _, f := range c.tagged {
		if !c.declared[f.patchName] {
			return nil, errors.Errorf("field %s is bound to unknown patch %s", f.fieldName, f.patchName)
		}
		b, ok := c.byName[f.patchName]
		if !ok {
			continue
		}
		if b.field.IsValid() {
			return nil, errors.Errorf("patch %s is bound to more than one field", f.patchName)
		}
		b.field = f.v
	}
	return c.bindings, nil
}

func (c *collector) walk(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)
		switch {
		case f.Type == patchType:
			if !f.IsExported() {
				c.log.Warnf("Unexported patch field %s is ignored", f.Name)
				continue
			}
			c.declared[f.Name] = true
			if fv.IsNil() {
				continue
			}
			b := &binding{patch: fv.Interface().(*Patch)}
			c.byName[f.Name] = b
			c.bindings = append(c.bindings, b)
		case f.Type == mockType:
			name, ok := f.Tag.Lookup(TagName)
			if !ok {
				continue
			}
			if !fv.CanSet() {
				return errors.Errorf("field %s bound to patch %s must be exported", f.Name, name)
			}
			c.tagged = append(c.tagged, taggedField{patchName: name, fieldName: f.Name, v: fv})
		case f.Anonymous:
			if f.Type == suiteType || f.Type == testifySuiteTy {
				continue
			}
			ev := fv
			if ev.Kind() == reflect.Pointer {
				if ev.IsNil() {
					continue
				}
				ev = ev.Elem()
			}
			if ev.Kind() != reflect.Struct {
				continue
			}
			if err := c.walk(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
