package typecheck

import (
	"fmt"

	"github.com/pkg/errors"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Error reports an ill-typed program: a type mismatch, an arity mismatch, a
// non-literal vector index, or any other violation of §4.1. Per spec.md §7
// this is always fatal; there is no recovery path.
type Error struct {
	Node string // Textual form of the offending node.
	msg  string
	err  error // Stack-carrying cause, attached via errors.WithStack.
}

// ---------------------
// ----- functions -----
// ---------------------

// newError builds a type Error for node, wrapped with a stack trace via
// errors.WithStack. cmd/rfunc prints only the error message, not the trace.
func newError(node string, format string, args ...interface{}) error {
	e := &Error{
		Node: node,
		msg:  fmt.Sprintf(format, args...),
	}
	e.err = errors.WithStack(e)
	return e.err
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("type error at %s: %s", e.Node, e.msg)
}
