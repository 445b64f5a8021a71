package rop

import (
	"context"
	"errors"
	"fmt"
)

// ErrPanic wraps a value recovered from a panicking callback.
var ErrPanic = errors.New("recovered panic")

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// PanicError converts a recovered value into an error matching ErrPanic.
func PanicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, recovered)
}
