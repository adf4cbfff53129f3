package vybiumzkevm

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm"
)

// ErrorCode represents a Vybium zkEVM error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidTrace represents a trace that cannot be replayed into a block
	ErrInvalidTrace

	// ErrWitnessAssignment represents a step its gadget cannot assign
	ErrWitnessAssignment

	// ErrConstraintUnsatisfied represents an assignment violating a gate
	ErrConstraintUnsatisfied

	// ErrLookupMiss represents an assignment with a lookup input missing from its table
	ErrLookupMiss

	// ErrInvalidInput represents an invalid input error
	ErrInvalidInput
)

// String returns the name of the error code
func (c ErrorCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrInvalidConfig:
		return "invalid config"
	case ErrInvalidTrace:
		return "invalid trace"
	case ErrWitnessAssignment:
		return "witness assignment"
	case ErrConstraintUnsatisfied:
		return "constraint unsatisfied"
	case ErrLookupMiss:
		return "lookup miss"
	case ErrInvalidInput:
		return "invalid input"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// CircuitError represents an error returned by the public API
type CircuitError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *CircuitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-zkevm error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-zkevm error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *CircuitError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *CircuitError) Is(target error) bool {
	t, ok := target.(*CircuitError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// classify maps the marks of an internal error to an error code. Lookup
// misses take precedence over gate failures: a missing row usually breaks
// the gates depending on it too.
func classify(err error) ErrorCode {
	switch {
	case errors.Is(err, evm.ErrConfiguration):
		return ErrInvalidConfig
	case errors.Is(err, evm.ErrLookupMiss):
		return ErrLookupMiss
	case errors.Is(err, evm.ErrConstraintUnsatisfied):
		return ErrConstraintUnsatisfied
	case errors.Is(err, evm.ErrWitness):
		return ErrWitnessAssignment
	default:
		return ErrUnknown
	}
}

func newError(code ErrorCode, message string, cause error) error {
	return &CircuitError{Code: code, Message: message, Cause: cause}
}
