package ir

import "fmt"

// Location is a sealed interface for source provenance attached to IR.
// Only UnknownLoc, FileLineColLoc, and CallSiteLoc implement this.
type Location interface {
	irLoc()
	String() string
}

// UnknownLoc is the sentinel used when no user frame could be found.
type UnknownLoc struct{}

func (UnknownLoc) irLoc() {}

func (UnknownLoc) String() string { return "loc(unknown)" }

// FileLineColLoc points at a single source position.
type FileLineColLoc struct {
	File string
	Line int
	Col  int
}

func (FileLineColLoc) irLoc() {}

func (l FileLineColLoc) String() string {
	return "loc(" + l.body() + ")"
}

func (l FileLineColLoc) body() string {
	return fmt.Sprintf("%q:%d:%d", l.File, l.Line, l.Col)
}

// CallSiteLoc nests a callee location inside the location of its caller.
type CallSiteLoc struct {
	Callee Location
	Caller Location
}

func (CallSiteLoc) irLoc() {}

func (l CallSiteLoc) String() string {
	return "loc(" + locBody(l) + ")"
}

func locBody(l Location) string {
	switch ll := l.(type) {
	case FileLineColLoc:
		return ll.body()
	case CallSiteLoc:
		return fmt.Sprintf("callsite(%s at %s)", locBody(ll.Callee), locBody(ll.Caller))
	default:
		return "unknown"
	}
}

// Unknown returns the unknown-location sentinel.
func Unknown() Location {
	return UnknownLoc{}
}

// FileLoc creates a FileLineColLoc.
func FileLoc(file string, line, col int) FileLineColLoc {
	return FileLineColLoc{File: file, Line: line, Col: col}
}

// CallSite creates a CallSiteLoc.
func CallSite(callee, caller Location) CallSiteLoc {
	return CallSiteLoc{Callee: callee, Caller: caller}
}
