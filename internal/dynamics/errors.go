package dynamics

import (
	"errors"
	"fmt"
)

// Error represents a wiring or evaluation failure in the dynamics layer.
//
// Every Error is a programmer error: the integrator never retries and never
// recovers locally. Code identifies the category; Func and Time locate it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Func names the function or variable involved, if any.
	Func string

	// Time is the requested time index, meaningful when Func is set.
	Time int64

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes dynamics errors.
type ErrorCode string

const (
	// ErrCodeUnsetDerivative indicates a Var was stepped before being wired
	// to a time derivative.
	ErrCodeUnsetDerivative ErrorCode = "UNSET_TIME_DERIVATIVE"

	// ErrCodeNoContext indicates a Var was stepped without a time base.
	ErrCodeNoContext ErrorCode = "NO_SIMULATION_CONTEXT"

	// ErrCodeNoIntermediate indicates no chain-rule path leads from a
	// function to the requested variable.
	ErrCodeNoIntermediate ErrorCode = "NO_INTERMEDIATE_VARIABLE"

	// ErrCodeUnindexed indicates a Hamiltonian was asked for the partial of
	// a variable it has never seen.
	ErrCodeUnindexed ErrorCode = "UNINDEXED_VARIABLE"

	// ErrCodeDivideByZero indicates a Fixed division by zero during
	// evaluation.
	ErrCodeDivideByZero ErrorCode = "DIVIDE_BY_ZERO"

	// ErrCodeArityMismatch indicates a function received the wrong number of
	// arguments.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeReentrantStep indicates a Var was asked to move while it was
	// already stepping.
	ErrCodeReentrantStep ErrorCode = "REENTRANT_STEP"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Func != "" {
		msg = fmt.Sprintf("%s (func=%s, t=%d)", msg, e.Func, e.Time)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsUnsetDerivative returns true if err is an unset time-derivative error.
func IsUnsetDerivative(err error) bool { return HasCode(err, ErrCodeUnsetDerivative) }

// IsNoContext returns true if err is a missing simulation-context error.
func IsNoContext(err error) bool { return HasCode(err, ErrCodeNoContext) }

// IsNoIntermediate returns true if err is a failed chain-rule search.
func IsNoIntermediate(err error) bool { return HasCode(err, ErrCodeNoIntermediate) }

// IsUnindexed returns true if err is an unindexed-variable error.
func IsUnindexed(err error) bool { return HasCode(err, ErrCodeUnindexed) }

// IsDivideByZero returns true if err is a division-by-zero error.
func IsDivideByZero(err error) bool { return HasCode(err, ErrCodeDivideByZero) }

// IsArityMismatch returns true if err is an arity mismatch.
func IsArityMismatch(err error) bool { return HasCode(err, ErrCodeArityMismatch) }

// IsReentrantStep returns true if err is a reentrant-step error.
func IsReentrantStep(err error) bool { return HasCode(err, ErrCodeReentrantStep) }

// NewUnindexedError creates an Error for a variable unknown to a Hamiltonian.
func NewUnindexedError(name string) *Error {
	return &Error{
		Code:    ErrCodeUnindexed,
		Message: "variable is not registered with the hamiltonian",
		Func:    name,
	}
}

// NewArityError creates an Error for a function applied to the wrong number
// of arguments.
func NewArityError(name string, want, got int) *Error {
	return &Error{
		Code:    ErrCodeArityMismatch,
		Message: fmt.Sprintf("%s takes %d arguments, got %d", name, want, got),
	}
}

func newNoIntermediateError(f, v string) *Error {
	return &Error{
		Code:    ErrCodeNoIntermediate,
		Message: fmt.Sprintf("%s does not depend on %s", f, v),
		Func:    f,
	}
}
