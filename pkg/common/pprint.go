package common

import (
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// DefaultDumpDepth is the nesting depth of dumps unless configured otherwise.
const DefaultDumpDepth = 3

var (
	spewLock   sync.RWMutex
	spewConfig = newSpewConfig(DefaultDumpDepth)
)

func newSpewConfig(depth int) *spew.ConfigState {
	return &spew.ConfigState{
		Indent:                  "\t",
		MaxDepth:                depth,
		DisableMethods:          true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
}

// SetDumpDepth sets how deep nested values are printed, 0 means unlimited.
func SetDumpDepth(depth int) {
	spewLock.Lock()
	defer spewLock.Unlock()
	spewConfig = newSpewConfig(depth)
}

// PrettyDump prints Golang objects in a beautiful way.
func PrettyDump(a ...any) {
	spewLock.RLock()
	defer spewLock.RUnlock()
	spewConfig.Dump(a...)
}

// PrettySdump prints Golang objects in a beautiful way to string.
func PrettySdump(a ...any) string {
	spewLock.RLock()
	defer spewLock.RUnlock()
	return spewConfig.Sdump(a...)
}
