package patch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open3fs/mockify/pkg/patch"
)

type hookSuite struct {
	patch.Suite

	PatchDerp    *patch.Patch
	PatchWork    *patch.Patch
	PatchMissing *patch.Patch
	patchHidden  *patch.Patch

	Derp *patch.Mock `patch:"PatchDerp"`
	Work *patch.Mock `patch:"PatchWork"`
}

// runHooks drives the suite hooks around body the way suite.Run does.
func runHooks(t *testing.T, s *hookSuite, body func()) {
	s.SetT(t)
	s.SetS(s)
	defer s.TearDownTest()
	s.SetupTest()
	body()
}

func TestSuiteRestoresWhenBodyPanics(t *testing.T) {
	r := require.New(t)
	target := newHerp()
	s := &hookSuite{
		PatchDerp: patch.Object(target, "Derp", patch.Value(7)),
		PatchWork: patch.Object(target, "Work", patch.ReturnValue("busy")),
	}

	r.PanicsWithValue("body blew up", func() {
		runHooks(t, s, func() {
			r.Equal(7, target.Derp)
			r.Equal("busy", target.Work())
			r.NotNil(s.Derp)
			r.Equal(7, s.Derp.Value())
			panic("body blew up")
		})
	})

	r.Equal(0, target.Derp)
	r.Equal("No; I'm lazy", target.Work())
	r.Nil(s.Derp)
	r.Nil(s.Work)
	r.False(s.PatchDerp.Active())
	r.False(s.PatchWork.Active())
}

type stackedSuite struct {
	patch.Suite

	PatchFirst  *patch.Patch
	PatchSecond *patch.Patch

	First  *patch.Mock `patch:"PatchFirst"`
	Second *patch.Mock `patch:"PatchSecond"`
}

func TestSuiteStartsInOrderStopsInReverse(t *testing.T) {
	r := require.New(t)
	target := newHerp()
	s := &stackedSuite{
		PatchFirst:  patch.Object(target, "Derp", patch.Value(7)),
		PatchSecond: patch.Object(target, "Derp", patch.Value(8)),
	}
	s.SetT(t)
	s.SetS(s)

	s.SetupTest()
	r.Equal(8, target.Derp)
	r.Equal(7, s.First.Value())
	r.Equal(8, s.Second.Value())
	r.True(s.PatchFirst.Active())
	r.True(s.PatchSecond.Active())

	s.TearDownTest()
	r.Equal(0, target.Derp)
	r.Nil(s.First)
	r.Nil(s.Second)
	r.False(s.PatchFirst.Active())
	r.False(s.PatchSecond.Active())
}

func TestSuiteFreshHandlePerTest(t *testing.T) {
	r := require.New(t)
	target := newHerp()
	s := &hookSuite{PatchWork: patch.Object(target, "Work")}

	var first *patch.Mock
	runHooks(t, s, func() {
		first = s.Work
		target.Work()
		target.Work()
		r.Equal(2, s.Work.CallCount())
		r.Equal("", target.Work())
	})
	runHooks(t, s, func() {
		r.NotSame(first, s.Work)
		r.Zero(s.Work.CallCount())
	})
}

func TestSuiteMissingAttribute(t *testing.T) {
	r := require.New(t)
	target := newHerp()
	s := &hookSuite{
		PatchDerp:    patch.Object(target, "Derp", patch.Value(7)),
		PatchMissing: patch.Object(target, "Missing", patch.Value(1)),
	}

	patches, err := patch.Collect(s)
	r.NoError(err)
	r.Equal([]*patch.Patch{s.PatchDerp, s.PatchMissing}, patches)

	_, err = patches[0].Start(s)
	r.NoError(err)
	m, err := patches[1].Start(s)
	r.ErrorContains(err, `does not have the attribute "Missing"`)
	r.Nil(m)
	r.Nil(patches[1].Mock())

	patches[0].Stop()
	r.Equal(0, target.Derp)
}

func TestCollectSkipsUnexportedAndNil(t *testing.T) {
	r := require.New(t)
	s := &hookSuite{
		PatchWork:   patch.Object(newHerp(), "Work"),
		patchHidden: patch.Object(newHerp(), "Derp"),
	}

	patches, err := patch.Collect(s)
	r.NoError(err)
	r.Equal([]*patch.Patch{s.PatchWork}, patches)
}

type embeddedPatches struct {
	PatchFoo *patch.Patch
}

type outerSuite struct {
	patch.Suite
	*embeddedPatches

	PatchDerp *patch.Patch
	Foo       *patch.Mock `patch:"PatchFoo"`
}

func TestCollectEmbedded(t *testing.T) {
	r := require.New(t)
	target := newHerp()
	s := &outerSuite{
		embeddedPatches: &embeddedPatches{PatchFoo: patch.Object(target, "Foo", patch.Value("baz"))},
		PatchDerp:       patch.Object(target, "Derp", patch.Value(3)),
	}

	patches, err := patch.Collect(s)
	r.NoError(err)
	r.Equal([]*patch.Patch{s.PatchFoo, s.PatchDerp}, patches)

	s.SetT(t)
	s.SetS(s)
	s.SetupTest()
	r.Equal("baz", target.Foo)
	r.Equal("baz", s.Foo.Value())
	s.TearDownTest()
	r.Equal("bar", target.Foo)
	r.Nil(s.Foo)
}

type badBindingSuite struct {
	patch.Suite

	PatchWork *patch.Patch
	Other     *patch.Mock `patch:"PatchOther"`
}

type doubleBindingSuite struct {
	patch.Suite

	PatchWork *patch.Patch
	A         *patch.Mock `patch:"PatchWork"`
	B         *patch.Mock `patch:"PatchWork"`
}

type hiddenBindingSuite struct {
	patch.Suite

	PatchWork *patch.Patch
	work      *patch.Mock `patch:"PatchWork"`
}

func TestCollectErrors(t *testing.T) {
	work := patch.Object(newHerp(), "Work")
	tests := []struct {
		name string
		self any
		want string
	}{
		{"nil", nil, "no test instance"},
		{"nil pointer", (*hookSuite)(nil), "no test instance"},
		{"not a pointer", hookSuite{}, "must be a pointer to a struct"},
		{"unknown binding", &badBindingSuite{PatchWork: work}, "bound to unknown patch PatchOther"},
		{"double binding", &doubleBindingSuite{PatchWork: work}, "bound to more than one field"},
		{"unexported binding", &hiddenBindingSuite{PatchWork: work}, "must be exported"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := patch.Collect(tc.self)
			require.ErrorContains(t, err, tc.want)
		})
	}
}
