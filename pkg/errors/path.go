package errors

import (
	"runtime"
	"strings"
)

// modulePath is the directory of this module, trimmed from recorded file names.
var modulePath string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return
	}
	modulePath = strings.TrimSuffix(file, "pkg/errors/path.go")
}

func trimModulePath(path string) string {
	return strings.TrimPrefix(path, modulePath)
}
