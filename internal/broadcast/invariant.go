package broadcast

import "fmt"

// InvariantError is the panic value raised when a function is applied to a
// state it does not accept, or when the graph is wired inconsistently. It
// signals a programming error, never bad input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "broadcast invariant violated: " + e.Msg
}

// invariant panics with an *InvariantError when cond is false. Checks are
// compiled out with the nocheck build tag.
func invariant(cond bool, format string, args ...any) {
	if checkInvariants && !cond {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}

// mustWire is invariant for graph wiring. It is checked under every build tag.
func mustWire(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}
