// Package invalid holds the sentinel error used by the triage components to
// report contract violations at their boundaries.
package invalid

import (
	"errors"
	"fmt"
)

// ErrInput is wrapped by every error that reports input outside a
// component's contract, such as a byte value outside 0-255.
var ErrInput = errors.New("invalid input")

// Errorf returns an error wrapping ErrInput with the given message.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}
