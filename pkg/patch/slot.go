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

	"github.com/open3fs/mockify/pkg/errors"
)

// slot is a place a substitute can be installed in.
type slot interface {
	fmt.Stringer

	Type() reflect.Type
	// Lookup returns a copy of the current value and whether it exists.
	Lookup() (reflect.Value, bool)
	Set(v reflect.Value)
	// Delete removes the slot. Only slots that may not exist support it.
	Delete()
}

// valueSlot is a settable struct field or the target of a pointer.
type valueSlot struct {
	v    reflect.Value
	desc string
}

func (s *valueSlot) String() string {
	return s.desc
}

func (s *valueSlot) Type() reflect.Type {
	return s.v.Type()
}

func (s *valueSlot) Lookup() (reflect.Value, bool) {
	orig := reflect.New(s.v.Type()).Elem()
	orig.Set(s.v)
	return orig, true
}

func (s *valueSlot) Set(v reflect.Value) {
	s.v.Set(v)
}

func (s *valueSlot) Delete() {
	s.v.Set(reflect.Zero(s.v.Type()))
}

// mapSlot is an entry of a map with string keys.
type mapSlot struct {
	m    reflect.Value
	key  reflect.Value
	desc string
}

func (s *mapSlot) String() string {
	return s.desc
}

func (s *mapSlot) Type() reflect.Type {
	return s.m.Type().Elem()
}

func (s *mapSlot) Lookup() (reflect.Value, bool) {
	v := s.m.MapIndex(s.key)
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	return v, true
}

func (s *mapSlot) Set(v reflect.Value) {
	s.m.SetMapIndex(s.key, v)
}

func (s *mapSlot) Delete() {
	s.m.SetMapIndex(s.key, reflect.Value{})
}

// indirect follows pointers and interfaces down to a concrete value.
func indirect(v reflect.Value, desc string) (reflect.Value, error) {
	if !v.IsValid() {
		return v, errors.Errorf("%s is nil", desc)
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, errors.Errorf("%s is nil", desc)
		}
		v = v.Elem()
	}
	return v, nil
}

func mapKey(m reflect.Value, name, desc string) (reflect.Value, error) {
	if m.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, errors.Errorf("%s has non-string keys", desc)
	}
	return reflect.ValueOf(name).Convert(m.Type().Key()), nil
}

// member returns the value called name inside v.
func member(v reflect.Value, name, desc string) (reflect.Value, error) {
	v, err := indirect(v, desc)
	if err != nil {
		return v, err
	}
	switch v.Kind() {
	case reflect.Struct:
		f, ok := v.Type().FieldByName(name)
		if !ok {
			return reflect.Value{}, errors.Errorf("%s does not have the attribute %q", desc, name)
		}
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			return reflect.Value{}, errors.Annotatef(err, "%s.%s", desc, name)
		}
		return fv, nil
	case reflect.Map:
		key, err := mapKey(v, name, desc)
		if err != nil {
			return reflect.Value{}, err
		}
		f := v.MapIndex(key)
		if !f.IsValid() {
			return reflect.Value{}, errors.Errorf("%s does not have the attribute %q", desc, name)
		}
		return f, nil
	}
	return reflect.Value{}, errors.Errorf("%s (%s) has no attributes", desc, v.Type())
}

// attrSlot returns the slot called attr inside v.
func attrSlot(v reflect.Value, attr, desc string) (slot, error) {
	v, err := indirect(v, desc)
	if err != nil {
		return nil, err
	}
	attrDesc := desc + "." + attr
	switch v.Kind() {
	case reflect.Struct:
		f, ok := v.Type().FieldByName(attr)
		if !ok {
			return nil, errors.Errorf("%s does not have the attribute %q", desc, attr)
		}
		if !f.IsExported() {
			return nil, errors.Errorf("%s is not exported", attrDesc)
		}
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, errors.Annotate(err, attrDesc)
		}
		if !fv.CanSet() {
			return nil, errors.Errorf("%s is not settable, pass a pointer to its owner", attrDesc)
		}
		return &valueSlot{v: fv, desc: attrDesc}, nil
	case reflect.Map:
		key, err := mapKey(v, attr, desc)
		if err != nil {
			return nil, err
		}
		if v.IsNil() {
			return nil, errors.Errorf("%s is a nil map", desc)
		}
		return &mapSlot{m: v, key: key, desc: fmt.Sprintf("%s[%q]", desc, attr)}, nil
	}
	return nil, errors.Errorf("%s (%s) has no attributes", desc, v.Type())
}

// pointerSlot returns the slot ptr points to.
func pointerSlot(ptr any, desc string) (slot, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, errors.Errorf("%s must be a non-nil pointer, got %T", desc, ptr)
	}
	return &valueSlot{v: v.Elem(), desc: desc}, nil
}
