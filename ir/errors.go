package ir

import "errors"

// MalformedError reports a constructor precondition violation: an
// undefined child where one is required, a type
// mismatch between operands, a negative Ramp width, and so on. Construction
// functions in this package return a *MalformedError instead of panicking so
// that a caller building IR programmatically (the front end, out of scope
// here) can report it without recovering from a panic.
type MalformedError struct {
	Node   string // constructor that rejected the node, e.g. "Add", "Ramp"
	Reason string
}

func (e *MalformedError) Error() string {
	return "malformed IR in " + e.Node + ": " + e.Reason
}

// ErrUnresolvedReference is returned by Scope.Get when a name is not bound
// in the scope chain. It indicates an internal pass bug:
// callers that expect it to be possible for a name to be absent should use
// Scope.Contains first rather than handling this error as a normal outcome.
var ErrUnresolvedReference = errors.New("ir: unresolved reference")
