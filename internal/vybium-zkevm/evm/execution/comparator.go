package execution

import (
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// ComparatorGadget handles LT, GT and EQ. Both words are compared as two
// 16-byte halves. GT is LT with the operands popped in swapped order.
type ComparatorGadget struct {
	sameContext  *util.SameContextGadget
	a, b         util.Word
	comparisonLo *util.ComparisonGadget
	comparisonHi *util.ComparisonGadget
	isEq         *util.IsEqualGadget
	isGt         *util.IsEqualGadget
}

func NewComparatorGadget(cb *util.ConstraintBuilder) *ComparatorGadget {
	opcode := cb.QueryCell()

	a := cb.QueryWord()
	b := cb.QueryWord()

	isEq := util.NewIsEqualGadget(cb, opcode.Expr(), core.Const(uint64(vm.EQ)))
	isGt := util.NewIsEqualGadget(cb, opcode.Expr(), core.Const(uint64(vm.GT)))

	// a[0..16] vs b[0..16]
	comparisonLo := util.NewComparisonGadget(cb, util.FromBytes(a.Cells[:16]), util.FromBytes(b.Cells[:16]), 16)
	ltLo, eqLo := comparisonLo.Expr()

	// a[16..32] vs b[16..32]
	comparisonHi := util.NewComparisonGadget(cb, util.FromBytes(a.Cells[16:]), util.FromBytes(b.Cells[16:]), 16)
	ltHi, eqHi := comparisonHi.Expr()

	// a < b when the high halves are smaller, or equal with smaller low
	// halves.
	lt := util.Select(ltHi, core.Const(1), core.Mul(eqHi, ltLo))
	eq := core.Mul(eqHi, eqLo)
	result := util.Select(isEq.Expr(), eq, lt)

	// The result is 0 or 1, so its RLC is the value itself.
	cb.StackPop(util.Select(isGt.Expr(), b.Expr(), a.Expr()))
	cb.StackPop(util.Select(isGt.Expr(), a.Expr(), b.Expr()))
	cb.StackPush(result)

	sameContext := util.NewSameContextGadget(cb, opcode, util.StepStateTransition{
		RwCounter:      util.Delta(core.Const(3)),
		ProgramCounter: util.Delta(core.Const(1)),
		StackPointer:   util.Delta(core.Const(1)),
	})

	return &ComparatorGadget{
		sameContext:  sameContext,
		a:            a,
		b:            b,
		comparisonLo: comparisonLo,
		comparisonHi: comparisonHi,
		isEq:         isEq,
		isGt:         isGt,
	}
}

func (g *ComparatorGadget) Name() string                        { return "CMP" }
func (g *ComparatorGadget) ExecutionState() step.ExecutionState { return step.Cmp }

func (g *ComparatorGadget) Assign(region util.Assigner, offset int, block *witness.Block, _ *witness.Call, es *witness.ExecStep) error {
	if err := g.sameContext.Assign(region, offset, es); err != nil {
		return err
	}

	opcode := core.NewElement(uint64(es.Opcode))
	if _, err := g.isEq.Assign(region, offset, opcode, core.NewElement(uint64(vm.EQ))); err != nil {
		return err
	}
	isGt, err := g.isGt.Assign(region, offset, opcode, core.NewElement(uint64(vm.GT)))
	if err != nil {
		return err
	}

	order := []int{0, 1}
	if isGt.IsOne() {
		order = []int{1, 0}
	}
	words, err := stackWords(block, es, order...)
	if err != nil {
		return err
	}
	a, b := words[0], words[1]

	if _, _, err := g.comparisonLo.Assign(region, offset, util.FromBytesValue(a[:16]), util.FromBytesValue(b[:16])); err != nil {
		return err
	}
	if _, _, err := g.comparisonHi.Assign(region, offset, util.FromBytesValue(a[16:]), util.FromBytesValue(b[16:])); err != nil {
		return err
	}
	if err := g.a.Assign(region, offset, a[:]); err != nil {
		return err
	}
	return g.b.Assign(region, offset, b[:])
}
