package util

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidWitness marks assignments whose inputs do not fit the gadget.
	ErrInvalidWitness = errors.New("invalid witness")
	// ErrInvalidConfiguration marks malformed constraint declarations.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

func errInvalidWitness(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidWitness)
}

func errInvalidConfiguration(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfiguration)
}
