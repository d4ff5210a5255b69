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
	"strings"
	"sync"

	"github.com/open3fs/mockify/pkg/errors"
)

var registry = struct {
	sync.RWMutex
	targets map[string]any
}{
	targets: make(map[string]any),
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// Register makes target reachable by Name under name, e.g.
//
//	patch.Register("storage.defaultClient", &defaultClient)
//
// lets patch.Name("storage.defaultClient.Timeout") patch a field of it.
// Registering a name again replaces the previous target.
func Register(name string, target any) error {
	if !validName(name) {
		return errors.Errorf("invalid target name: %q", name)
	}
	if target == nil {
		return errors.Errorf("nil target registered as %s", name)
	}
	registry.Lock()
	defer registry.Unlock()
	registry.targets[name] = target
	return nil
}

// MustRegister is like Register but panics on error. It is meant for init
// functions and package level variables.
func MustRegister(name string, target any) {
	if err := Register(name, target); err != nil {
		panic(err)
	}
}

// Unregister removes the target registered under name.
func Unregister(name string) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.targets, name)
}

// lookup finds the longest registered prefix of path. It returns the
// target, its name and the remaining path segments.
func lookup(path string) (any, string, []string, error) {
	if !validName(path) {
		return nil, "", nil, errors.Errorf("invalid target name: %q", path)
	}
	segs := strings.Split(path, ".")

	registry.RLock()
	defer registry.RUnlock()
	for i := len(segs); i > 0; i-- {
		name := strings.Join(segs[:i], ".")
		if target, ok := registry.targets[name]; ok {
			return target, name, segs[i:], nil
		}
	}
	return nil, "", nil, errors.Errorf("no target registered for %s", path)
}
