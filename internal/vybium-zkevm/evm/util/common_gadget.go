package util

import (
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// SameContextGadget holds the checks every instruction that stays in the
// current call shares: the opcode is the byte at the program counter, the
// state is responsible for it, and enough gas is left to pay for it.
type SameContextGadget struct {
	opcode            Cell
	sufficientGasLeft *RangeCheckGadget
	gasCost           uint64
}

// NewSameContextGadget issues the opcode lookups, checks the gas and declares
// transition with the gas cost of the builder's state charged to gas_left.
// transition.GasLeft is overwritten.
func NewSameContextGadget(cb *ConstraintBuilder, opcode Cell, transition StepStateTransition) *SameContextGadget {
	state := cb.ExecutionState()
	gasCost := state.GasCost()

	cb.OpcodeLookup(opcode.Expr())
	cb.AddLookup("Responsible opcode lookup", table.FixedLookup{
		Tag:    table.ResponsibleOpcode.Expr(),
		Values: [3]core.Expression{core.Const(uint64(state)), opcode.Expr(), core.Const(0)},
	})

	// gas_left - gas_cost must not wrap around.
	sufficientGasLeft := NewRangeCheckGadget(cb,
		core.Sub(cb.Curr().State.GasLeft.Expr(), core.Const(gasCost)), 8)

	transition.GasLeft = Delta(core.Neg(core.Const(gasCost)))
	cb.RequireStepStateTransition(transition)

	return &SameContextGadget{
		opcode:            opcode,
		sufficientGasLeft: sufficientGasLeft,
		gasCost:           gasCost,
	}
}

// Assign writes the opcode and the remaining gas of es.
func (g *SameContextGadget) Assign(region Assigner, offset int, es *witness.ExecStep) error {
	if es.GasCost != g.gasCost {
		return errInvalidWitness("%s costs %d gas, step charges %d", es.Opcode, g.gasCost, es.GasCost)
	}
	if es.GasLeft < es.GasCost {
		return errInvalidWitness("%s needs %d gas, %d left", es.Opcode, es.GasCost, es.GasLeft)
	}
	if err := g.opcode.AssignUint64(region, offset, uint64(es.Opcode)); err != nil {
		return err
	}
	return g.sufficientGasLeft.Assign(region, offset, core.NewElement(es.GasLeft-es.GasCost))
}
