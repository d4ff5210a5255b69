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
	"sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/open3fs/mockify/pkg/common"
	"github.com/open3fs/mockify/pkg/errors"
)

// Mock is the substitute handle of an active patch.
//
// For function slots the installed substitute records every call in the
// embedded mock.Mock under Name(), so AssertCalled, AssertNumberOfCalls and
// friends apply. CallCount, CallArgs and AssertCalledOnceWith read a copy of
// the history kept under the handle's own lock and may run while other
// goroutines call the substitute. For other slots the substitute is a plain value and nothing
// is recorded.
type Mock struct {
	mock.Mock

	name      string
	typ       reflect.Type
	value     reflect.Value
	recording bool

	lock       sync.Mutex
	calls      []mock.Arguments
	returns    []reflect.Value
	sideEffect reflect.Value
	panicValue any
	panics     bool
}

func newMock(name string, typ reflect.Type) *Mock {
	return &Mock{
		name: name,
		typ:  typ,
	}
}

// record turns the handle into a recording function substitute.
func (m *Mock) record() {
	anyArgs := make([]any, m.typ.NumIn())
	for i := range anyArgs {
		anyArgs[i] = mock.Anything
	}
	m.On(m.name, anyArgs...).Maybe()
	m.value = reflect.MakeFunc(m.typ, m.call)
	m.recording = true
}

func (m *Mock) call(in []reflect.Value) []reflect.Value {
	args := make([]any, len(in))
	for i, v := range in {
		args[i] = v.Interface()
	}
	m.MethodCalled(m.name, args...)

	m.lock.Lock()
	m.calls = append(m.calls, args)
	panics, panicValue := m.panics, m.panicValue
	sideEffect, returns := m.sideEffect, m.returns
	m.lock.Unlock()

	switch {
	case panics:
		panic(panicValue)
	case sideEffect.IsValid():
		if m.typ.IsVariadic() {
			return sideEffect.CallSlice(in)
		}
		return sideEffect.Call(in)
	case returns != nil:
		return returns
	}
	out := make([]reflect.Value, m.typ.NumOut())
	for i := range out {
		out[i] = reflect.Zero(m.typ.Out(i))
	}
	return out
}

// Name returns the method name calls are recorded under.
func (m *Mock) Name() string {
	return m.name
}

// Value returns the installed substitute.
func (m *Mock) Value() any {
	if !m.value.IsValid() {
		return nil
	}
	return m.value.Interface()
}

// Recording reports whether calls to the substitute are recorded.
func (m *Mock) Recording() bool {
	return m.recording
}

func (m *Mock) requireRecording() error {
	if !m.recording {
		return errors.Errorf("%s is not a recording function substitute", m.name)
	}
	return nil
}

// SetReturn sets the values returned by later calls.
func (m *Mock) SetReturn(values ...any) error {
	if err := m.requireRecording(); err != nil {
		return err
	}
	if len(values) != m.typ.NumOut() {
		return errors.Errorf("%s returns %d values, got %d", m.name, m.typ.NumOut(), len(values))
	}
	out := make([]reflect.Value, len(values))
	for i, v := range values {
		rv, err := convertValue(v, m.typ.Out(i))
		if err != nil {
			return errors.Annotatef(err, "return value %d of %s", i, m.name)
		}
		out[i] = rv
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.returns = out
	return nil
}

// SetSideEffect makes later calls run fn, which must have the substitute's
// signature. A nil fn clears it.
func (m *Mock) SetSideEffect(fn any) error {
	if err := m.requireRecording(); err != nil {
		return err
	}
	var rv reflect.Value
	if fn != nil {
		rv = reflect.ValueOf(fn)
		if rv.Kind() != reflect.Func || !rv.Type().ConvertibleTo(m.typ) {
			return errors.Errorf("side effect of %s must be a %s, got %T", m.name, m.typ, fn)
		}
		rv = rv.Convert(m.typ)
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.sideEffect = rv
	return nil
}

// SetPanic makes later calls panic with v.
func (m *Mock) SetPanic(v any) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.panicValue = v
	m.panics = true
}

// CallCount returns how many times the substitute was called.
func (m *Mock) CallCount() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.calls)
}

// CallArgs returns the arguments of every recorded call in order.
func (m *Mock) CallArgs() []mock.Arguments {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]mock.Arguments(nil), m.calls...)
}

// AssertCalledOnceWith asserts the substitute was called exactly once, with
// args.
func (m *Mock) AssertCalledOnceWith(t mock.TestingT, args ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	calls := m.CallArgs()
	if len(calls) != 1 {
		return assert.Fail(t, fmt.Sprintf("Expected %s to be called once. Called %d times.", m.name, len(calls)),
			common.PrettySdump(calls))
	}
	if diff, n := mock.Arguments(args).Diff(calls[0]); n > 0 {
		return assert.Fail(t, fmt.Sprintf("%s was called with unexpected arguments", m.name), diff)
	}
	return true
}
