package execution

import (
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// JumpdestGadget marks a jump target. It only moves the program counter and
// charges gas.
type JumpdestGadget struct {
	sameContext *util.SameContextGadget
}

func NewJumpdestGadget(cb *util.ConstraintBuilder) *JumpdestGadget {
	opcode := cb.QueryCell()
	sameContext := util.NewSameContextGadget(cb, opcode, util.StepStateTransition{
		ProgramCounter: util.Delta(core.Const(1)),
	})
	return &JumpdestGadget{sameContext: sameContext}
}

func (g *JumpdestGadget) Name() string                        { return "JUMPDEST" }
func (g *JumpdestGadget) ExecutionState() step.ExecutionState { return step.Jumpdest }

func (g *JumpdestGadget) Assign(region util.Assigner, offset int, _ *witness.Block, _ *witness.Call, es *witness.ExecStep) error {
	return g.sameContext.Assign(region, offset, es)
}
