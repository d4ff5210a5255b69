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
	"math"
	"reflect"

	"github.com/open3fs/mockify/pkg/errors"
)

type options struct {
	value    any
	hasValue bool

	returns    []any
	hasReturns bool

	sideEffect any

	panicValue any
	panics     bool

	create bool
	name   string
}

// Option configures the substitute installed by a Patch.
type Option func(*options)

// Value installs v itself as the substitute. Calls to a function value are
// not recorded.
func Value(v any) Option {
	return func(o *options) {
		o.value = v
		o.hasValue = true
	}
}

// ReturnValue makes the recording substitute return values, one per result
// of the patched function.
func ReturnValue(values ...any) Option {
	return func(o *options) {
		o.returns = values
		o.hasReturns = true
	}
}

// SideEffect makes the recording substitute call fn with the received
// arguments and return its results. fn must have the patched function's
// signature. It takes precedence over ReturnValue.
func SideEffect(fn any) Option {
	return func(o *options) {
		o.sideEffect = fn
	}
}

// Panic makes the recording substitute panic with v after recording the call.
func Panic(v any) Option {
	return func(o *options) {
		o.panicValue = v
		o.panics = true
	}
}

// Create allows patching a map key that does not exist yet. The key is
// removed again when the patch stops.
func Create() Option {
	return func(o *options) {
		o.create = true
	}
}

// MockName sets the method name calls are recorded under. It defaults to
// the patched attribute's name.
func MockName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *options) configuresBehavior() bool {
	return o.hasReturns || o.sideEffect != nil || o.panics
}

// build makes the substitute handle for a slot of type typ.
func (o *options) build(typ reflect.Type, name string) (*Mock, error) {
	m := newMock(name, typ)
	if o.hasValue {
		if o.configuresBehavior() {
			return nil, errors.New("a replacement value cannot be combined with configured behavior")
		}
		v, err := convertValue(o.value, typ)
		if err != nil {
			return nil, errors.Annotate(err, "replacement value")
		}
		m.value = v
		return m, nil
	}
	if typ.Kind() != reflect.Func {
		if o.configuresBehavior() {
			return nil, errors.Errorf("%s is not a function, use Value to replace it", typ)
		}
		m.value = reflect.Zero(typ)
		return m, nil
	}

	m.record()
	if o.hasReturns {
		if err := m.SetReturn(o.returns...); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if o.sideEffect != nil {
		if err := m.SetSideEffect(o.sideEffect); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if o.panics {
		m.SetPanic(o.panicValue)
	}
	return m, nil
}

type kindClass int

const (
	otherClass kindClass = iota
	boolClass
	numberClass
	stringClass
)

func classOf(k reflect.Kind) kindClass {
	switch k {
	case reflect.Bool:
		return boolClass
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return numberClass
	case reflect.String:
		return stringClass
	}
	return otherClass
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice,
		reflect.UnsafePointer:
		return true
	}
	return false
}

// convertValue turns v into a value of type typ. Assignable values are used
// as is; basic values are converted only when the conversion is lossless.
func convertValue(v any, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		if nilable(typ.Kind()) {
			return reflect.Zero(typ), nil
		}
		return reflect.Value{}, errors.Errorf("nil is not a valid %s", typ)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		out := reflect.New(typ).Elem()
		out.Set(rv)
		return out, nil
	}
	class := classOf(rv.Kind())
	if class != otherClass && class == classOf(typ.Kind()) && rv.Type().ConvertibleTo(typ) {
		out := rv.Convert(typ)
		if fits(rv, typ) && out.Convert(rv.Type()).Equal(rv) {
			return out, nil
		}
		return reflect.Value{}, errors.Errorf("%v does not fit in %s", v, typ)
	}
	return reflect.Value{}, errors.Errorf("value of type %s is not assignable to %s", rv.Type(), typ)
}

// fits reports whether the number rv is in the range of typ. Precision is
// checked separately by converting back.
func fits(rv reflect.Value, typ reflect.Type) bool {
	target := reflect.Zero(typ)
	to := typ.Kind()
	switch from := rv.Kind(); {
	case isInt(from):
		n := rv.Int()
		switch {
		case isInt(to):
			return !target.OverflowInt(n)
		case isUint(to):
			return n >= 0 && !target.OverflowUint(uint64(n))
		}
	case isUint(from):
		n := rv.Uint()
		switch {
		case isInt(to):
			return n <= math.MaxInt64 && !target.OverflowInt(int64(n))
		case isUint(to):
			return !target.OverflowUint(n)
		}
	case isFloat(from):
		f := rv.Float()
		switch {
		case isInt(to):
			return f >= math.MinInt64 && f < math.MaxInt64 && !target.OverflowInt(int64(f))
		case isUint(to):
			return f >= 0 && f < math.MaxUint64 && !target.OverflowUint(uint64(f))
		case isFloat(to):
			return math.IsInf(f, 0) || math.IsNaN(f) || !target.OverflowFloat(f)
		}
	}
	return true
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
