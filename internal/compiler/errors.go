package compiler

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvariantError reports that some pass received an IR node of a shape it
// never expected to see — always a bug in an earlier pass, never a property
// of the input program, per spec.md §7. The passes packages signal this by
// panicking with a plain string; recover converts it to an InvariantError
// here at the pipeline boundary so callers get a normal error value instead
// of a crashed process.
type InvariantError struct {
	Pass string
	msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violation in %s: %s", e.Pass, e.msg)
}

// guard runs fn, converting any panic raised inside it into an
// *InvariantError wrapped with a stack trace. A typecheck-style error
// returned normally by fn passes through untouched.
func guard(pass string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithStack(&InvariantError{Pass: pass, msg: fmt.Sprint(r)})
		}
	}()
	return fn()
}
