// Package execution implements one gadget per execution state. A gadget is
// configured once against a constraint builder, which records its cells,
// constraints, lookups and state transition, and is then assigned once per
// step in its state.
package execution

import (
	"github.com/cockroachdb/errors"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// Gadget constrains the steps of one execution state.
type Gadget interface {
	// Name is the name used in diagnostics.
	Name() string

	// ExecutionState is the state the gadget is responsible for.
	ExecutionState() step.ExecutionState

	// Assign writes the gadget cells for es at offset. The step state cells
	// are assigned by the caller. Assign only reads block.
	Assign(region util.Assigner, offset int, block *witness.Block, call *witness.Call, es *witness.ExecStep) error
}

var constructors = [step.NumStates]func(cb *util.ConstraintBuilder) Gadget{
	step.Stop:       func(cb *util.ConstraintBuilder) Gadget { return NewStopGadget(cb) },
	step.Jumpdest:   func(cb *util.ConstraintBuilder) Gadget { return NewJumpdestGadget(cb) },
	step.Cmp:        func(cb *util.ConstraintBuilder) Gadget { return NewComparatorGadget(cb) },
	step.Signextend: func(cb *util.ConstraintBuilder) Gadget { return NewSignextendGadget(cb) },
}

// Configure configures the gadget of the builder's state.
func Configure(cb *util.ConstraintBuilder) (Gadget, error) {
	state := cb.ExecutionState()
	if !state.Valid() || constructors[state] == nil {
		return nil, errors.Mark(errors.Newf("no gadget for execution state %s", state), util.ErrInvalidConfiguration)
	}
	return constructors[state](cb), nil
}

// stackWords returns the little-endian bytes of the stack values of the
// step's first n accesses, in the given index order.
func stackWords(block *witness.Block, es *witness.ExecStep, order ...int) ([][32]byte, error) {
	words := make([][32]byte, len(order))
	for i, idx := range order {
		rw, err := block.Rw(es, idx)
		if err != nil {
			return nil, errors.Mark(err, util.ErrInvalidWitness)
		}
		value, err := rw.StackValue()
		if err != nil {
			return nil, errors.Mark(err, util.ErrInvalidWitness)
		}
		words[i] = witness.ToLittleEndian(&value)
	}
	return words, nil
}
