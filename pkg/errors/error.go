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

package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Stacker represents an error who implements Stack method
type Stacker interface {
	error
	Stack() string
}

// Underlying represents an error who implements Underlie method
type Underlying interface {
	error
	Underlie() error
}

// frame is the location of the function who created an error.
type frame struct {
	pc       uintptr
	file     string
	line     int
	funcname string
}

func (f *frame) valid() bool {
	return f.pc != 0
}

// shortFuncName drops the import path and package name of a runtime function
// name, e.g. "example.com/x/pkg.(*T).Method" becomes "(*T).Method".
func shortFuncName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i != -1 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i != -1 {
		name = name[i+1:]
	}
	return name
}

func (f *frame) caller(callDepth int) {
	var ok bool
	f.pc, f.file, f.line, ok = runtime.Caller(callDepth + 1)
	if !ok {
		return
	}
	f.file = trimModulePath(f.file)
	if fn := runtime.FuncForPC(f.pc); fn != nil {
		f.funcname = shortFuncName(fn.Name())
	}
}

// Err is an error that has a message and the location where it was created.
type Err struct {
	// underlying is the error under current error in error stack
	underlying error

	// msg is the message contained in this error
	msg string

	// frame records caller's location
	frame frame
}

// Caller records caller's stack frame with specified stack frames above.
func (err *Err) Caller(callDepth int) {
	err.frame.caller(callDepth + 1)
}

// Error join all errors' nonempty Error() output in error stack
func (err *Err) Error() string {
	switch {
	case err.underlying == nil:
		return err.msg
	case err.msg == "":
		return err.underlying.Error()
	}
	return fmt.Sprintf("%s: %s", err.msg, err.underlying.Error())
}

// Format prints the stack trace for %+v.
func (err *Err) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('+') {
		fmt.Fprint(f, StackTrace(err))
		return
	}
	fmt.Fprint(f, err.Error())
}

// Underlie returns the error under current error in the stack.
func (err *Err) Underlie() error {
	return err.underlying
}

// Unwrap lets the standard library errors.Is and errors.As walk the stack.
func (err *Err) Unwrap() error {
	return err.underlying
}

// Stack returns error message with stack frame information.
func (err *Err) Stack() string {
	if err.frame.valid() {
		return fmt.Sprintf("%s:%d:%s: %s", err.frame.file, err.frame.line, err.frame.funcname, err.msg)
	}
	return fmt.Sprintf("UnknownStack: %s", err.msg)
}

// Message returns the message of this layer only.
func (err *Err) Message() string {
	return err.msg
}

func rawNew(message string) *Err {
	return &Err{msg: message}
}

func wrap(err error, message string) *Err {
	newErr := rawNew(message)
	newErr.underlying = err
	return newErr
}

// New creates an error with given message and records caller's location.
// It is a drop in replacement for standard library function errors.New.
func New(message string) error {
	err := rawNew(message)
	err.Caller(1)
	return err
}

// Errorf creates an error with given format specifier, and records caller's location.
// It is a drop replacement for standard library function fmt.Errorf.
func Errorf(format string, a ...any) error {
	err := rawNew(fmt.Sprintf(format, a...))
	err.Caller(1)
	return err
}

// NewRawError allows caller to create error with specific depth.
func NewRawError(callDepth int, format string, a ...any) error {
	err := rawNew(fmt.Sprintf(format, a...))
	err.Caller(callDepth + 1)
	return err
}

// Annotate add an extra context, and records caller's location.
func Annotate(err error, ctx string) error {
	if err == nil {
		return nil
	}
	newErr := wrap(err, ctx)
	newErr.Caller(1)
	return newErr
}

// Annotatef add an extra context with given format specifier, and records caller's location.
func Annotatef(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	newErr := wrap(err, fmt.Sprintf(format, a...))
	newErr.Caller(1)
	return newErr
}

// Trace add an extra stack frame information to an error.
func Trace(err error) error {
	if err == nil {
		return nil
	}
	newErr := wrap(err, "")
	newErr.Caller(1)
	return newErr
}

// Cause returns the innermost error in error stack.
func Cause(err error) error {
	for {
		e, ok := err.(Underlying)
		if !ok {
			return err
		}
		next := e.Underlie()
		if next == nil {
			return err
		}
		err = next
	}
}

// StackTrace formats stack trace information in error stack, innermost first.
// Output example:
//
//	pkg/patch/patch.go:120:(*Patch).Start: field Missing not found in patch_test.herp
//	pkg/patch/suite.go:88:(*Suite).SetupTest:
func StackTrace(err error) string {
	var lines []string
	for err != nil {
		if e, ok := err.(Stacker); ok {
			lines = append(lines, e.Stack())
		} else {
			lines = append(lines, err.Error())
		}
		e, ok := err.(Underlying)
		if !ok {
			break
		}
		err = e.Underlie()
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}
