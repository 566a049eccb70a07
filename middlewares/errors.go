package middlewares

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// PanicError is a panic recovered from a controller.
type PanicError struct {
	Value any    // the panic value
	Stack []byte // nil when stack capture is disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError is returned when a request outlives its deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func IsPanicError(err error) bool {
	_, ok := AsPanicError(err)
	return ok
}

func IsTimeoutError(err error) bool {
	_, ok := AsTimeoutError(err)
	return ok
}

// AsPanicError extracts a PanicError from err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts a TimeoutError from err's chain.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
