package account

import (
	"errors"
	"fmt"
)

// Error strings double as the client-visible failure reasons, so they keep
// the surface's sentence form.
var (
	ErrUserNotFound  = errors.New("Your user profile was not found.")
	ErrAlreadyActive = errors.New("Account is already active.")
)

// ValidationError rejects a request before any state is touched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// InsufficientCoinsError reports the full cost the user must hold.
type InsufficientCoinsError struct {
	Required float64
}

func (e *InsufficientCoinsError) Error() string {
	return fmt.Sprintf("Insufficient coins. Required: %g.", e.Required)
}

// IsClientError reports whether err carries a reason safe to surface to the
// caller. Anything else is an internal failure.
func IsClientError(err error) bool {
	var validationErr *ValidationError
	var insufficientErr *InsufficientCoinsError
	return errors.As(err, &validationErr) ||
		errors.As(err, &insufficientErr) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAlreadyActive)
}
