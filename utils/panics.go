package utils

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a panic recovered by RecoverWithError.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("got panic: %v", e.Value)
}

// RecoverWithError stores a recovered panic in err. It has to be deferred
// directly by the function owning err.
func RecoverWithError(err *error) {
	if rv := recover(); rv != nil {
		*err = &PanicError{Value: rv, Stack: debug.Stack()}
	}
}
