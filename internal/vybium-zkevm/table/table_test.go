package table

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
)

func elems(values ...uint64) []fr.Element {
	out := make([]fr.Element, len(values))
	for i, v := range values {
		out[i] = core.NewElement(v)
	}
	return out
}

func TestFixedTableTagRowCounts(t *testing.T) {
	tests := []struct {
		tag  FixedTableTag
		rows int
	}{
		{Range16, 16},
		{Range17, 17},
		{Range32, 32},
		{Range256, 256},
		{Range512, 512},
		{SignByte, 256},
		{BitwiseAnd, 65536},
		{BitwiseOr, 65536},
		{BitwiseXor, 65536},
		{ResponsibleOpcode, 6},
	}
	for _, test := range tests {
		t.Run(test.tag.String(), func(t *testing.T) {
			rows := test.tag.Build()
			require.Len(t, rows, test.rows)
			want := core.NewElement(uint64(test.tag))
			for _, row := range rows {
				require.True(t, row[0].Equal(&want))
			}
		})
	}
}

func TestNewFixedRows(t *testing.T) {
	rows := NewFixedRows(Range16, SignByte)
	require.Equal(t, 1+16+256, rows.Len())

	t.Run("ZeroRowFirst", func(t *testing.T) {
		for _, v := range rows.Row(0) {
			assert.True(t, v.IsZero())
		}
		assert.True(t, rows.Contains(nil))
	})

	t.Run("Range", func(t *testing.T) {
		assert.True(t, rows.Contains(elems(uint64(Range16), 15, 0, 0)))
		assert.False(t, rows.Contains(elems(uint64(Range16), 16, 0, 0)))
		assert.False(t, rows.Contains(elems(uint64(Range32), 16, 0, 0)), "tag not loaded")
	})

	t.Run("SignByte", func(t *testing.T) {
		assert.True(t, rows.Contains(elems(uint64(SignByte), 0x7F, 0, 0)))
		assert.True(t, rows.Contains(elems(uint64(SignByte), 0x80, 0xFF, 0)))
		assert.True(t, rows.Contains(elems(uint64(SignByte), 0xF0, 0xFF)))
		assert.False(t, rows.Contains(elems(uint64(SignByte), 0x80, 0, 0)))
	})
}

func TestBitwiseRows(t *testing.T) {
	rows := NewFixedRows(BitwiseXor)
	assert.True(t, rows.Contains(elems(uint64(BitwiseXor), 0xF0, 0x3C, 0xCC)))
	assert.False(t, rows.Contains(elems(uint64(BitwiseXor), 0xF0, 0x3C, 0x30)))
}

func TestResponsibleOpcodeRows(t *testing.T) {
	rows := NewFixedRows(ResponsibleOpcode)
	assert.True(t, rows.Contains(elems(uint64(ResponsibleOpcode), uint64(step.Cmp), uint64(vm.GT), 0)))
	assert.True(t, rows.Contains(elems(uint64(ResponsibleOpcode), uint64(step.Signextend), uint64(vm.SIGNEXTEND), 0)))
	assert.False(t, rows.Contains(elems(uint64(ResponsibleOpcode), uint64(step.Jumpdest), uint64(vm.GT), 0)))
}

func TestSharedFixedTable(t *testing.T) {
	a := Fixed()
	b := Fixed()
	assert.Same(t, a, b)
	assert.True(t, a.Contains(elems(uint64(Range512), 511, 0, 0)))
	assert.False(t, a.Contains(elems(uint64(BitwiseAnd), 1, 1, 1)))
	assert.Len(t, AllFixedTableTags(), 10)
}

func TestRowsWidth(t *testing.T) {
	rows := NewRows(3)
	assert.NoError(t, rows.Add(elems(1, 2, 3)...))
	assert.Error(t, rows.Add(elems(1, 2, 3, 4)...))
	assert.True(t, rows.Contains(elems(1, 2, 3)))
	assert.False(t, rows.Contains(elems(1, 2, 3, 0)))
	assert.Panics(t, func() { NewRows(MaxWidth + 1) })

	rows.MustAdd(elems(4)...)
	assert.True(t, rows.Contains(elems(4, 0, 0)))
	assert.Panics(t, func() { rows.MustAdd(elems(1, 2, 3, 4)...) })
}

func TestLookupDegree(t *testing.T) {
	a := core.Query{Column: 0}
	b := core.Query{Column: 1}
	selector := core.Query{Column: 2}

	fixed := FixedLookup{
		Tag:    Range256.Expr(),
		Values: [3]core.Expression{core.Mul(a, b), core.Const(0), core.Const(0)},
	}
	assert.Equal(t, FixedTable, fixed.Table())
	assert.Equal(t, 2, fixed.Degree())
	assert.Len(t, fixed.InputExprs(), FixedTable.Width())

	conditional := Conditional(selector, fixed)
	assert.Equal(t, FixedTable, conditional.Table())
	assert.Equal(t, 3, conditional.Degree())

	nested := Conditional(selector, conditional)
	assert.Equal(t, 4, nested.Degree())

	rw := RwLookup{
		Counter: a,
		IsWrite: core.Const(1),
		Tag:     RwStack.Expr(),
		Values:  [5]core.Expression{b, a, b, core.Const(0), core.Const(0)},
	}
	assert.Len(t, rw.InputExprs(), RwTable.Width())
	assert.Equal(t, 1, rw.Degree())

	bytecode := BytecodeLookup{Hash: core.Const(0), Index: a, Value: b}
	assert.Len(t, bytecode.InputExprs(), BytecodeTable.Width())
	tx := TxLookup{ID: a, Tag: TxGas.Expr(), Index: core.Const(0), Value: b}
	assert.Len(t, tx.InputExprs(), TxTable.Width())
}

func TestConditionalLookupDegeneratesToZeroRow(t *testing.T) {
	ev := evaluator{core.NewElement(0), core.NewElement(9)}
	lookup := Conditional(core.Query{Column: 0}, FixedLookup{
		Tag:    Range16.Expr(),
		Values: [3]core.Expression{core.Query{Column: 1}, core.Const(0), core.Const(0)},
	})
	rows := NewFixedRows(Range16)

	inputs := make([]fr.Element, 0, FixedWidth)
	for _, expr := range lookup.InputExprs() {
		inputs = append(inputs, expr.Evaluate(ev))
	}
	assert.True(t, rows.Contains(inputs))

	ev[0] = core.NewElement(1)
	inputs = inputs[:0]
	for _, expr := range lookup.InputExprs() {
		inputs = append(inputs, expr.Evaluate(ev))
	}
	assert.True(t, rows.Contains(inputs))

	ev[1] = core.NewElement(16)
	inputs = inputs[:0]
	for _, expr := range lookup.InputExprs() {
		inputs = append(inputs, expr.Evaluate(ev))
	}
	assert.False(t, rows.Contains(inputs))
}

type evaluator []fr.Element

func (e evaluator) Query(column, rotation int) fr.Element {
	if rotation != 0 || column >= len(e) {
		return fr.Element{}
	}
	return e[column]
}

func (e evaluator) Challenge() fr.Element { return fr.Element{} }
