package patch_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/open3fs/mockify/pkg/patch"
	"github.com/open3fs/mockify/tests/base"
)

type service struct {
	Lookup  func(key string) (int, error)
	Printf  func(format string, args ...any) string
	Notify  func(ch chan<- string)
	Next    func() uint
	Tick    func(n int)
	Handler handlerFunc
}

type handlerFunc func(code int) bool

func TestMockSuite(t *testing.T) {
	suite.Run(t, new(mockSuite))
}

type mockSuite struct {
	base.Suite

	svc *service
}

func (s *mockSuite) SetupTest() {
	s.Suite.SetupTest()
	s.svc = &service{
		Lookup: func(string) (int, error) { return -1, errors.New("not found") },
		Printf: fmt.Sprintf,
	}
}

func (s *mockSuite) use(attr string, opts ...patch.Option) *patch.Mock {
	return patch.Use(s.T(), patch.Object(s.svc, attr, opts...))
}

func (s *mockSuite) TestZeroReturns() {
	m := s.use("Lookup")
	s.True(m.Recording())
	s.Equal("Lookup", m.Name())

	n, err := s.svc.Lookup("a")
	s.Zero(n)
	s.NoError(err)
	m.AssertCalled(s.T(), "Lookup", "a")
}

func (s *mockSuite) TestReturnValue() {
	m := s.use("Lookup", patch.ReturnValue(int8(4), nil))

	n, err := s.svc.Lookup("b")
	s.Equal(4, n)
	s.NoError(err)
	s.True(m.AssertCalledOnceWith(s.T(), "b"))
}

func (s *mockSuite) TestReturnValueMismatch() {
	_, err := patch.Object(s.svc, "Lookup", patch.ReturnValue(1)).Start(nil)
	s.R().ErrorContains(err, "returns 2 values, got 1")

	_, err = patch.Object(s.svc, "Lookup", patch.ReturnValue("1", nil)).Start(nil)
	s.R().ErrorContains(err, "return value 0 of Lookup")

	_, err = patch.Object(s.svc, "Next", patch.ReturnValue(-5)).Start(nil)
	s.R().ErrorContains(err, "-5 does not fit in uint")
	s.Nil(s.svc.Next)

	_, err = patch.Object(s.svc, "Lookup", patch.ReturnValue(uint64(1<<63), nil)).Start(nil)
	s.R().ErrorContains(err, "does not fit in int")

	n, _ := s.svc.Lookup("x")
	s.Equal(-1, n)
}

func (s *mockSuite) TestSideEffect() {
	seen := []string{}
	m := s.use("Lookup",
		patch.ReturnValue(1, nil),
		patch.SideEffect(func(key string) (int, error) {
			seen = append(seen, key)
			return len(key), nil
		}))

	n, err := s.svc.Lookup("abc")
	s.Equal(3, n)
	s.NoError(err)
	s.Equal([]string{"abc"}, seen)
	s.Equal(1, m.CallCount())

	s.NoError(m.SetSideEffect(nil))
	n, _ = s.svc.Lookup("abc")
	s.Equal(1, n)
}

func (s *mockSuite) TestSideEffectSignature() {
	_, err := patch.Object(s.svc, "Lookup", patch.SideEffect(func() {})).Start(nil)
	s.R().ErrorContains(err, "side effect of Lookup must be a func(string) (int, error)")

	_, err = patch.Object(s.svc, "Lookup", patch.SideEffect("nope")).Start(nil)
	s.R().Error(err)
}

func (s *mockSuite) TestNamedFuncType() {
	m := s.use("Handler", patch.SideEffect(func(code int) bool { return code == 200 }))
	s.True(s.svc.Handler(200))
	s.False(s.svc.Handler(500))
	s.Equal(2, m.CallCount())
	s.Equal([]mock.Arguments{{200}, {500}}, m.CallArgs())
}

func (s *mockSuite) TestVariadic() {
	m := s.use("Printf", patch.SideEffect(func(format string, args ...any) string {
		return strings.ToUpper(fmt.Sprintf(format, args...))
	}))

	s.Equal("A-1", s.svc.Printf("%s-%d", "a", 1))
	s.True(m.AssertCalledOnceWith(s.T(), "%s-%d", []any{"a", 1}))
}

func (s *mockSuite) TestConcurrentCalls() {
	m := s.use("Tick")
	const calls = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < calls; i++ {
			s.svc.Tick(i)
		}
	}()
	for m.CallCount() < calls {
		_ = m.CallArgs()
	}
	wg.Wait()

	args := m.CallArgs()
	s.R().Len(args, calls)
	for i, a := range args {
		s.Equal(mock.Arguments{i}, a)
	}
	m.AssertNumberOfCalls(s.T(), "Tick", calls)
}

func (s *mockSuite) TestPanic() {
	m := s.use("Lookup", patch.Panic("lookup exploded"))
	s.R().PanicsWithValue("lookup exploded", func() { _, _ = s.svc.Lookup("k") })
	s.Equal(1, m.CallCount())
}

func (s *mockSuite) TestSetupConfiguresHandle() {
	p := patch.Object(s.svc, "Lookup").Setup(func(self any, m *patch.Mock) error {
		return m.SetReturn(self.(*mockSuite).svc.Printf("%d", 1) == "1", nil)
	})
	_, err := p.Start(s)
	s.R().ErrorContains(err, "return value 0 of Lookup")

	p = patch.Object(s.svc, "Lookup").Setup(func(self any, m *patch.Mock) error {
		return m.SetReturn(len(self.(*mockSuite).svc.Printf("%d", 100)), nil)
	})
	s.NoError(p.Run(s, func(*patch.Mock) {
		n, _ := s.svc.Lookup("z")
		s.Equal(3, n)
	}))
}

func (s *mockSuite) TestValueHandleRejectsBehavior() {
	m := s.use("Notify", patch.Value(func(chan<- string) {}))
	s.False(m.Recording())
	s.R().Error(m.SetReturn())
	s.R().Error(m.SetSideEffect(func(chan<- string) {}))
	s.NotNil(m.Value())
}

func (s *mockSuite) TestAssertCalledOnceWithFailures() {
	m := s.use("Lookup")
	ft := new(fakeT)

	s.False(m.AssertCalledOnceWith(ft))
	s.Len(ft.errors, 1)

	_, _ = s.svc.Lookup("a")
	s.False(m.AssertCalledOnceWith(ft, "b"))
	s.Len(ft.errors, 2)
	s.True(m.AssertCalledOnceWith(ft, "a"))
	s.True(m.AssertCalledOnceWith(ft, mock.Anything))

	_, _ = s.svc.Lookup("a")
	s.False(m.AssertCalledOnceWith(ft, "a"))
	s.Len(ft.errors, 3)
}

func (s *mockSuite) TestMockName() {
	m := s.use("Lookup", patch.MockName("Find"))
	_, _ = s.svc.Lookup("q")
	s.Equal("Find", m.Name())
	m.AssertCalled(s.T(), "Find", "q")
	m.AssertNumberOfCalls(s.T(), "Find", 1)
}
