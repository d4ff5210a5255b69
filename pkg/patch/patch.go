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
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/open3fs/mockify/pkg/errors"
	"github.com/open3fs/mockify/pkg/log"
)

// SetupFunc configures a freshly installed substitute. self is the running
// test instance, nil outside a suite. A returned error undoes the patch.
type SetupFunc func(self any, m *Mock) error

// Patch is a reusable, test scoped substitution. It is inactive until Start
// and active until the matching Stop; each Start produces a new Mock.
type Patch struct {
	loc   locator
	opts  options
	setup SetupFunc

	lock   sync.Mutex
	active *activation
}

type activation struct {
	slot    slot
	orig    reflect.Value
	existed bool
	mock    *Mock
	log     log.Interface
}

func (a *activation) restore() {
	if a.existed {
		a.slot.Set(a.orig)
	} else {
		a.slot.Delete()
	}
}

func newPatch(loc locator, opts []Option) *Patch {
	return &Patch{
		loc:  loc,
		opts: buildOptions(opts),
	}
}

// Object patches the attribute attr of target. target is a pointer to a
// struct, whose exported field attr is replaced, or a map with string keys,
// whose entry attr is replaced.
func Object(target any, attr string, opts ...Option) *Patch {
	return newPatch(&objectLocator{target: target, name: attr}, opts)
}

// Var patches the variable ptr points to.
func Var(ptr any, opts ...Option) *Patch {
	return newPatch(&varLocator{ptr: ptr}, opts)
}

// Name patches the value at a dotted path below a target added with
// Register. The path is resolved on every Start.
func Name(path string, opts ...Option) *Patch {
	return newPatch(&nameLocator{path: path}, opts)
}

// New picks the kind of patch from target: a string is a registered name
// (attr is appended to it), a Proxy is resolved against the test instance
// (attr is appended to it), anything else is patched as an Object.
func New(target any, attr string, opts ...Option) *Patch {
	switch t := target.(type) {
	case string:
		if attr != "" {
			t += "." + attr
		}
		return Name(t, opts...)
	case Proxy:
		if attr != "" {
			t = t.Attr(attr)
		}
		return t.Patch(opts...)
	}
	return Object(target, attr, opts...)
}

// Setup registers fn to run right after each Start. The patch is active
// while fn runs, so fn may use p.Mock. An error or panic from fn undoes the
// patch and fails Start.
func (p *Patch) Setup(fn SetupFunc) *Patch {
	p.setup = fn
	return p
}

func (p *Patch) String() string {
	return p.loc.String()
}

func (p *Patch) mockName() string {
	if p.opts.name != "" {
		return p.opts.name
	}
	return p.loc.attr()
}

// Start installs the substitute and returns its handle. Resolution errors
// leave the target untouched. Starting an active patch is an error.
func (p *Patch) Start(self any) (*Mock, error) {
	act, err := p.install(self)
	if err != nil {
		return nil, err
	}
	m := act.mock

	done := false
	defer func() {
		if !done {
			p.abort(act)
		}
	}()
	if p.setup != nil {
		if err = p.setup(self, m); err != nil {
			return nil, errors.Annotatef(err, "setup patch %s", p)
		}
	}
	done = true

	act.log.Debugf("Patch started, created: %t", !act.existed)
	return m, nil
}

// install resolves the slot and replaces its value. The setup function runs
// after install returns, with the patch already active.
func (p *Patch) install(self any) (*activation, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.active != nil {
		return nil, errors.Errorf("patch %s is already active", p)
	}
	s, err := p.loc.resolve(self)
	if err != nil {
		return nil, errors.Trace(err)
	}
	orig, existed := s.Lookup()
	if !existed && !p.opts.create {
		return nil, errors.Errorf("%s does not exist", s)
	}
	m, err := p.opts.build(s.Type(), p.mockName())
	if err != nil {
		return nil, errors.Annotatef(err, "patch %s", p)
	}

	act := &activation{
		slot:    s,
		orig:    orig,
		existed: existed,
		mock:    m,
		log: log.Logger.Subscribe(log.FieldKeyPatch, p.String()).
			Subscribe(log.FieldKeyActivation, uuid.NewString()),
	}
	s.Set(m.value)
	p.active = act
	return act, nil
}

// abort undoes act when its setup did not complete. A setup function that
// already stopped the patch leaves nothing to undo.
func (p *Patch) abort(act *activation) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.active != act {
		return
	}
	p.active = nil
	act.restore()
	act.log.Debugf("Patch undone, setup did not complete")
}

// Stop restores the original value, or removes a slot the patch created.
// Stopping an inactive patch does nothing.
func (p *Patch) Stop() {
	p.lock.Lock()
	defer p.lock.Unlock()

	act := p.active
	if act == nil {
		return
	}
	p.active = nil
	act.restore()
	act.log.Debugf("Patch stopped after %d calls", act.mock.CallCount())
}

// Run starts the patch, calls fn with the handle and stops the patch when
// fn returns, panics or exits the goroutine.
func (p *Patch) Run(self any, fn func(m *Mock)) error {
	m, err := p.Start(self)
	if err != nil {
		return errors.Trace(err)
	}
	defer p.Stop()
	fn(m)
	return nil
}

// Mock returns the handle of the current activation, nil while inactive.
func (p *Patch) Mock() *Mock {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.active == nil {
		return nil
	}
	return p.active.mock
}

// Active reports whether the patch is started.
func (p *Patch) Active() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.active != nil
}
