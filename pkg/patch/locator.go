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
	"slices"
	"strings"

	"github.com/open3fs/mockify/pkg/errors"
)

// locator finds the slot a patch applies to. self is the running test
// instance, nil outside a suite.
type locator interface {
	fmt.Stringer

	resolve(self any) (slot, error)
	// attr is the default name calls are recorded under.
	attr() string
}

// describe names a target in messages, e.g. "*pkg.herp".
func describe(target any) string {
	if target == nil {
		return "<nil>"
	}
	return reflect.TypeOf(target).String()
}

// walk descends from v through names and returns the slot of the last one.
func walk(v reflect.Value, root string, names []string) (slot, error) {
	desc := root
	last := len(names) - 1
	for _, name := range names[:last] {
		next, err := member(v, name, desc)
		if err != nil {
			return nil, err
		}
		v = next
		desc += "." + name
	}
	return attrSlot(v, names[last], desc)
}

type objectLocator struct {
	target any
	name   string
}

func (l *objectLocator) String() string {
	return describe(l.target) + "." + l.name
}

func (l *objectLocator) attr() string {
	return l.name
}

func (l *objectLocator) resolve(any) (slot, error) {
	if l.name == "" {
		return nil, errors.Errorf("no attribute given for %s", describe(l.target))
	}
	return attrSlot(reflect.ValueOf(l.target), l.name, describe(l.target))
}

type varLocator struct {
	ptr any
}

func (l *varLocator) String() string {
	return "var " + describe(l.ptr)
}

func (l *varLocator) attr() string {
	return "Value"
}

func (l *varLocator) resolve(any) (slot, error) {
	return pointerSlot(l.ptr, l.String())
}

type nameLocator struct {
	path string
}

func (l *nameLocator) String() string {
	return l.path
}

func (l *nameLocator) attr() string {
	return l.path[strings.LastIndexByte(l.path, '.')+1:]
}

func (l *nameLocator) resolve(any) (slot, error) {
	target, name, rest, err := lookup(l.path)
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return pointerSlot(target, name)
	}
	return walk(reflect.ValueOf(target), name, rest)
}

// Proxy is a path relative to the running test instance. It lets a patch
// declared before the suite exists reach values the suite holds.
type Proxy struct {
	names []string
}

// Self is the empty proxy, standing for the test instance itself.
var Self Proxy

// Attr returns the proxy for the member called name.
func (p Proxy) Attr(name string) Proxy {
	names := make([]string, len(p.names), len(p.names)+1)
	copy(names, p.names)
	return Proxy{names: append(names, name)}
}

// Path returns the member names of the proxy.
func (p Proxy) Path() []string {
	return slices.Clone(p.names)
}

func (p Proxy) String() string {
	return strings.Join(append([]string{"self"}, p.names...), ".")
}

// Patch returns a Patch of the last member of the proxy.
func (p Proxy) Patch(opts ...Option) *Patch {
	return newPatch(&proxyLocator{proxy: p}, opts)
}

type proxyLocator struct {
	proxy Proxy
}

func (l *proxyLocator) String() string {
	return l.proxy.String()
}

func (l *proxyLocator) attr() string {
	if len(l.proxy.names) == 0 {
		return ""
	}
	return l.proxy.names[len(l.proxy.names)-1]
}

func (l *proxyLocator) resolve(self any) (slot, error) {
	if len(l.proxy.names) == 0 {
		return nil, errors.New("self cannot be patched, name one of its attributes")
	}
	if self == nil {
		return nil, errors.Errorf("%s can only be resolved inside a running suite", l.proxy)
	}
	return walk(reflect.ValueOf(self), "self", l.proxy.names)
}
