package patch_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/open3fs/mockify/pkg/patch"
)

type herp struct {
	Derp  int
	Foo   string
	Sleep func() string
	Work  func() string
}

func newHerp() *herp {
	return &herp{
		Derp:  0,
		Foo:   "bar",
		Sleep: func() string { return "read me a story" },
		Work:  func() string { return "No; I'm lazy" },
	}
}

// disk has a computed, read-only size.
type disk struct {
	Size func() int64
}

var (
	theHerp = newHerp()
	theDisk = &disk{Size: func() int64 { return 512 }}
	hooks   = map[string]func(int){}
)

func TestMain(m *testing.M) {
	patch.MustRegister("tests.herp", theHerp)
	patch.MustRegister("tests.hooks", hooks)
	os.Exit(m.Run())
}

// fakeT records assertion failures instead of failing the test.
type fakeT struct {
	errors []string
}

func (f *fakeT) Logf(string, ...any) {}

func (f *fakeT) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeT) FailNow() {}
