package execution

import (
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// StopGadget ends the trace. It checks the opcode and declares no
// transition.
type StopGadget struct {
	opcode util.Cell
}

func NewStopGadget(cb *util.ConstraintBuilder) *StopGadget {
	opcode := cb.QueryCell()
	cb.OpcodeLookup(opcode.Expr())
	cb.AddLookup("Responsible opcode lookup", table.FixedLookup{
		Tag:    table.ResponsibleOpcode.Expr(),
		Values: [3]core.Expression{core.Const(uint64(step.Stop)), opcode.Expr(), core.Const(0)},
	})
	return &StopGadget{opcode: opcode}
}

func (g *StopGadget) Name() string                        { return "STOP" }
func (g *StopGadget) ExecutionState() step.ExecutionState { return step.Stop }

func (g *StopGadget) Assign(region util.Assigner, offset int, _ *witness.Block, _ *witness.Call, es *witness.ExecStep) error {
	return g.opcode.AssignUint64(region, offset, uint64(es.Opcode))
}
