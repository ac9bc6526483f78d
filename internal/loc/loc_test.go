package loc

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwparam/internal/ir"
)

func TestChainLocation(t *testing.T) {
	a := ir.FileLoc("a.go", 1, 0)
	b := ir.FileLoc("b.go", 2, 0)
	c := ir.FileLoc("c.go", 3, 0)

	tests := []struct {
		name  string
		chain Chain
		want  ir.Location
		text  string
	}{
		{"empty", nil, ir.Unknown(), "loc(unknown)"},
		{"single", Chain{a}, a, `loc("a.go":1:0)`},
		{"pair", Chain{a, b}, ir.CallSite(a, b), `loc(callsite("a.go":1:0 at "b.go":2:0))`},
		{"triple", Chain{a, b, c}, ir.CallSite(a, ir.CallSite(b, c)),
			`loc(callsite("a.go":1:0 at callsite("b.go":2:0 at "c.go":3:0)))`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.chain.Location()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestFilterDropsHiddenFrames(t *testing.T) {
	r := NewResolver("A.go")
	frames := []Frame{
		{File: "/lib/A.go", Line: 40, Func: "lib.helper"},
		{File: "/user/B.go", Line: 10, Func: "main.build"},
		{File: "/user/C.go", Line: 5, Func: "main.main"},
	}

	chain := r.Filter(frames)
	require.Len(t, chain, 2)
	assert.Equal(t, Chain{ir.FileLoc("/user/B.go", 10, 0), ir.FileLoc("/user/C.go", 5, 0)}, chain)
	assert.Equal(t, `loc(callsite("/user/B.go":10:0 at "/user/C.go":5:0))`, chain.Location().String())
}

func TestFilterAllHidden(t *testing.T) {
	r := NewResolver("A.go", "B.go")
	frames := []Frame{
		{File: "/lib/A.go", Line: 1, Func: "lib.a"},
		{File: "/lib/B.go", Line: 2, Func: "lib.b"},
	}
	assert.Equal(t, ir.Unknown(), r.Filter(frames).Location())
}

func TestFilterEmptyStack(t *testing.T) {
	assert.Equal(t, ir.Unknown(), NewResolver().Filter(nil).Location())
}

func TestFilterDropsRuntimeFrames(t *testing.T) {
	frames := []Frame{
		{File: "/user/B.go", Line: 10, Func: "main.build"},
		{File: "/go/src/runtime/proc.go", Line: 283, Func: "runtime.main"},
		{File: "/go/src/runtime/asm_amd64.s", Line: 1700, Func: "runtime.goexit"},
	}
	chain := NewResolver().Filter(frames)
	assert.Equal(t, Chain{ir.FileLoc("/user/B.go", 10, 0)}, chain)
}

func TestFilterHidesByExactPath(t *testing.T) {
	r := NewResolver("/lib/shim.go")
	frames := []Frame{
		{File: "/lib/shim.go", Line: 1, Func: "lib.shim"},
		{File: "/user/shim.go", Line: 2, Func: "main.shim"},
	}
	assert.Equal(t, Chain{ir.FileLoc("/user/shim.go", 2, 0)}, r.Filter(frames))
}

func TestFilterColumnIsZero(t *testing.T) {
	chain := NewResolver().Filter([]Frame{{File: "x.go", Line: 7, Func: "main.f"}})
	require.Len(t, chain, 1)
	assert.Equal(t, 0, chain[0].Col)
}

func TestFilterKeepsOrder(t *testing.T) {
	frames := []Frame{
		{File: "1.go", Line: 1, Func: "p.one"},
		{File: "hidden.go", Line: 2, Func: "p.two"},
		{File: "3.go", Line: 3, Func: "p.three"},
		{File: "hidden.go", Line: 4, Func: "p.four"},
		{File: "5.go", Line: 5, Func: "p.five"},
	}
	chain := NewResolver("hidden.go").Filter(frames)
	lines := make([]int, len(chain))
	for i, l := range chain {
		lines[i] = l.Line
	}
	assert.Equal(t, []int{1, 3, 5}, lines)
}

func TestHidesOwnFile(t *testing.T) {
	r := NewResolver()
	assert.True(t, r.Hides(selfFile))
	assert.False(t, r.Hides("loc.go"), "base-name match is only for registered names")
}

func TestWithExtendsHiddenSet(t *testing.T) {
	base := NewResolver("a.go")
	ext := base.With("b.go")

	assert.True(t, ext.Hides("/x/a.go"))
	assert.True(t, ext.Hides("/x/b.go"))
	assert.True(t, ext.Hides(selfFile))
	assert.False(t, base.Hides("/x/b.go"), "With must not modify the receiver")
}

func TestResolvePointsAtCaller(t *testing.T) {
	_, file, line, ok := runtime.Caller(0)
	require.True(t, ok)
	got := Resolve()

	cs, ok := got.(ir.CallSiteLoc)
	require.True(t, ok, "expected a call-site chain, got %s", got)

	callee, ok := cs.Callee.(ir.FileLineColLoc)
	require.True(t, ok)
	assert.Equal(t, file, callee.File)
	assert.Equal(t, line+2, callee.Line)
	assert.Equal(t, 0, callee.Col)
}

func TestResolveHidesTestFile(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	r := NewResolver(filepath.Base(file))
	got := r.Resolve()
	assert.NotContains(t, got.String(), filepath.Base(file))
}

func TestCaptureIncludesCaller(t *testing.T) {
	frames := Capture(0)
	require.NotEmpty(t, frames)
	assert.True(t, strings.HasSuffix(frames[0].Func, "TestCaptureIncludesCaller"), "got %s", frames[0].Func)
}

func captureAtDepth(depth int) []Frame {
	if depth == 0 {
		return Capture(0)
	}
	return captureAtDepth(depth - 1)
}

func TestCaptureDeepStack(t *testing.T) {
	frames := captureAtDepth(3 * initialDepth)
	require.Greater(t, len(frames), 3*initialDepth)

	var found bool
	for _, f := range frames {
		if strings.HasSuffix(f.Func, "TestCaptureDeepStack") {
			found = true
		}
	}
	assert.True(t, found, "outermost test frame must be kept")
}

func TestAt(t *testing.T) {
	got := At("top.go", 12, 4)
	assert.Equal(t, ir.FileLoc("top.go", 12, 4), got)
	assert.Equal(t, `loc("top.go":12:4)`, got.String())
}

func TestResolveConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Resolve())
		}()
	}
	wg.Wait()
}
