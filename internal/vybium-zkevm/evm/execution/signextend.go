package execution

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// signextendPositions is the number of bytes that can carry the sign. The
// top byte never does: nothing lies above it.
const signextendPositions = util.WordSize - 1

// SignextendGadget extends the sign of byte index of value over the bytes
// above it. An index of 31 or more leaves value unchanged.
type SignextendGadget struct {
	sameContext    *util.SameContextGadget
	index          util.Word
	value          util.Word
	signByte       util.Cell
	isMsbSumZero   *util.IsZeroGadget
	isByteSelected [signextendPositions]*util.IsEqualGadget
	selectors      [signextendPositions]util.Cell
}

func NewSignextendGadget(cb *util.ConstraintBuilder) *SignextendGadget {
	opcode := cb.QueryCell()

	g := &SignextendGadget{
		index:    cb.QueryWord(),
		value:    cb.QueryWord(),
		signByte: cb.QueryCell(),
	}
	for i := range g.selectors {
		g.selectors[i] = cb.QueryBool()
	}

	// Any non-zero byte above the lowest one puts the index out of range.
	g.isMsbSumZero = util.NewIsZeroGadget(cb, util.Sum(g.index.Cells[1:]))

	// selectors[i] is set for every position at or above the selected byte,
	// so the bytes that take the sign byte are exactly those whose previous
	// position has its selector set. At most one position is selected, which
	// keeps the running sum boolean.
	selectedByte := core.Const(0)
	for i := range g.isByteSelected {
		g.isByteSelected[i] = util.NewIsEqualGadget(cb, g.index.Cells[0].Expr(), core.Const(uint64(i)))
		isSelected := util.And(g.isByteSelected[i].Expr(), g.isMsbSumZero.Expr())
		selectedByte = core.Add(selectedByte, core.Mul(isSelected, g.value.Cells[i].Expr()))

		previous := core.Const(0)
		if i > 0 {
			previous = g.selectors[i-1].Expr()
		}
		cb.RequireEqual("Constrain selector == 1 when is_selected == 1 || previous selector == 1",
			core.Add(isSelected, previous), g.selectors[i].Expr())
	}

	// The sign byte is 0xFF when the top bit of the selected byte is set and
	// 0 otherwise.
	cb.AddLookup("Sign byte lookup", table.FixedLookup{
		Tag:    table.SignByte.Expr(),
		Values: [3]core.Expression{selectedByte, g.signByte.Expr(), core.Const(0)},
	})

	// Byte 0 never changes.
	resultBytes := make([]core.Expression, util.WordSize)
	resultBytes[0] = g.value.Cells[0].Expr()
	for i := 1; i < util.WordSize; i++ {
		resultBytes[i] = util.Select(g.selectors[i-1].Expr(), g.signByte.Expr(), g.value.Cells[i].Expr())
	}
	result := core.RandomLinearCombineExpr(resultBytes, core.Randomness())

	cb.StackPop(g.index.Expr())
	cb.StackPop(g.value.Expr())
	cb.StackPush(result)

	g.sameContext = util.NewSameContextGadget(cb, opcode, util.StepStateTransition{
		RwCounter:      util.Delta(core.Const(3)),
		ProgramCounter: util.Delta(core.Const(1)),
		StackPointer:   util.Delta(core.Const(1)),
	})
	return g
}

func (g *SignextendGadget) Name() string                        { return "SIGNEXTEND" }
func (g *SignextendGadget) ExecutionState() step.ExecutionState { return step.Signextend }

func (g *SignextendGadget) Assign(region util.Assigner, offset int, block *witness.Block, _ *witness.Call, es *witness.ExecStep) error {
	if err := g.sameContext.Assign(region, offset, es); err != nil {
		return err
	}

	words, err := stackWords(block, es, 0, 1)
	if err != nil {
		return err
	}
	index, value := words[0], words[1]
	if err := g.index.Assign(region, offset, index[:]); err != nil {
		return err
	}
	if err := g.value.Assign(region, offset, value[:]); err != nil {
		return err
	}

	msbSumZero, err := g.isMsbSumZero.Assign(region, offset, util.SumValue(index[1:]))
	if err != nil {
		return err
	}
	var previous fr.Element
	for i := range g.selectors {
		isByteSelected, err := g.isByteSelected[i].Assign(region, offset,
			core.NewElement(uint64(index[0])), core.NewElement(uint64(i)))
		if err != nil {
			return err
		}
		selected := util.AndValue(isByteSelected, msbSumZero)
		var selector fr.Element
		selector.Add(&selected, &previous)
		if err := g.selectors[i].Assign(region, offset, selector); err != nil {
			return err
		}
		previous = selector
	}

	var sign uint64
	if index[0] < signextendPositions && msbSumZero.IsOne() {
		sign = uint64(value[index[0]] >> 7)
	}
	return g.signByte.AssignUint64(region, offset, sign*0xFF)
}
