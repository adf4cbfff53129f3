package evm

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
)

var (
	// ErrConfiguration marks circuits that cannot be built, such as gadgets
	// exceeding the degree bound.
	ErrConfiguration = errors.New("circuit configuration")
	// ErrWitness marks traces that do not fit the gadget of a step.
	ErrWitness = errors.New("witness")
	// ErrLookupMiss marks assignments with a lookup input missing from its
	// table.
	ErrLookupMiss = errors.New("lookup miss")
	// ErrConstraintUnsatisfied marks assignments violating a gate.
	ErrConstraintUnsatisfied = errors.New("constraint unsatisfied")
)

// StepError reports the step whose assignment failed.
type StepError struct {
	Index  int
	Gadget string
	State  step.ExecutionState
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s, gadget %s): %v", e.Index, e.State, e.Gadget, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func stepError(index int, gadget string, state step.ExecutionState, err error) error {
	return errors.Mark(&StepError{Index: index, Gadget: gadget, State: state, Err: err}, ErrWitness)
}
