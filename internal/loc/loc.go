// Package loc resolves the user-facing source location of an IR construct.
//
// The resolver walks the live call stack from the innermost frame outward,
// drops frames that belong to library shims, and folds what remains into a
// nested call-site location: the innermost user frame is the callee, and each
// outer frame is its caller. Go frames carry no column, so every location has
// column 0.
//
// When no user frame survives filtering the result is loc(unknown). Resolving
// never fails.
package loc

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/roach88/hwparam/internal/ir"
)

// initialDepth is the first buffer size tried by Capture. The buffer doubles
// until the whole stack fits.
const initialDepth = 64

// Frame is one entry of a captured call stack.
type Frame struct {
	File string
	Line int
	Func string
}

// Chain is a filtered stack, innermost frame first.
type Chain []ir.FileLineColLoc

// Location folds the chain into a single location.
//
//	[]         loc(unknown)
//	[a]        a
//	[a, b, c]  callsite(a at callsite(b at c))
func (c Chain) Location() ir.Location {
	switch len(c) {
	case 0:
		return ir.Unknown()
	case 1:
		return c[0]
	default:
		return ir.CallSite(c[0], c[1:].Location())
	}
}

// Resolver filters stacks against a fixed set of hidden files.
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	// base names, e.g. "shim.go"
	names map[string]struct{}
	// absolute paths, e.g. the resolver's own source file
	paths map[string]struct{}
}

// selfFile is the absolute path of this source file.
var selfFile = func() string {
	_, file, _, _ := runtime.Caller(0)
	return file
}()

// NewResolver creates a resolver that hides the given files in addition to
// its own. An entry containing a path separator must match a frame's file
// exactly; anything else is compared against the frame's base name.
func NewResolver(hidden ...string) *Resolver {
	r := &Resolver{
		names: make(map[string]struct{}),
		paths: make(map[string]struct{}),
	}
	if selfFile != "" {
		r.paths[selfFile] = struct{}{}
	}
	for _, h := range hidden {
		if h == "" {
			continue
		}
		if strings.ContainsRune(h, '/') || strings.ContainsRune(h, filepath.Separator) {
			r.paths[h] = struct{}{}
		} else {
			r.names[h] = struct{}{}
		}
	}
	return r
}

// With returns a new resolver that also hides the given files.
func (r *Resolver) With(hidden ...string) *Resolver {
	out := NewResolver(hidden...)
	for n := range r.names {
		out.names[n] = struct{}{}
	}
	for p := range r.paths {
		out.paths[p] = struct{}{}
	}
	return out
}

// Hides reports whether frames from file are excluded.
func (r *Resolver) Hides(file string) bool {
	if _, ok := r.paths[file]; ok {
		return true
	}
	_, ok := r.names[filepath.Base(file)]
	return ok
}

// excluded reports whether f should be dropped from the chain.
func (r *Resolver) excluded(f Frame) bool {
	if strings.HasPrefix(f.Func, "runtime.") {
		return true
	}
	return r.Hides(f.File)
}

// Filter drops hidden frames from frames (innermost first) and returns the
// remaining user frames in the same order.
func (r *Resolver) Filter(frames []Frame) Chain {
	var chain Chain
	for _, f := range frames {
		if r.excluded(f) {
			continue
		}
		chain = append(chain, ir.FileLoc(f.File, f.Line, 0))
	}
	return chain
}

// Resolve captures the caller's stack and returns its filtered location.
func (r *Resolver) Resolve() ir.Location {
	return r.Filter(Capture(1)).Location()
}

// Capture returns the current goroutine's stack, innermost first, skipping
// skip frames above Capture's caller.
func Capture(skip int) []Frame {
	var (
		pcs []uintptr
		n   int
	)
	for size := initialDepth; ; size *= 2 {
		pcs = make([]uintptr, size)
		// +2 skips runtime.Callers and Capture itself.
		n = runtime.Callers(skip+2, pcs)
		if n < size {
			break
		}
	}
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)
	for {
		f, more := frames.Next()
		out = append(out, Frame{File: f.File, Line: f.Line, Func: f.Function})
		if !more {
			break
		}
	}
	return out
}

// At returns an explicit call-site token for callers that already know where
// they are, bypassing the stack walk.
func At(file string, line, col int) ir.Location {
	return ir.FileLoc(file, line, col)
}

// Default hides only the resolver's own files.
var Default = NewResolver()

// Resolve resolves the caller's location with Default.
func Resolve() ir.Location {
	return Default.Resolve()
}
