package table

import (
	"fmt"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
)

// Table names the table a lookup is checked against.
type Table uint8

const (
	FixedTable Table = iota + 1
	TxTable
	RwTable
	BytecodeTable
)

// Width returns the number of columns of the table.
func (t Table) Width() int {
	switch t {
	case FixedTable:
		return FixedWidth
	case TxTable:
		return 4
	case RwTable:
		return 8
	case BytecodeTable:
		return 3
	default:
		return 0
	}
}

func (t Table) String() string {
	switch t {
	case FixedTable:
		return "Fixed"
	case TxTable:
		return "Tx"
	case RwTable:
		return "Rw"
	case BytecodeTable:
		return "Bytecode"
	default:
		return fmt.Sprintf("Table(%d)", uint8(t))
	}
}

// Lookup is a request that its input expressions, evaluated on a row, equal
// some row of Table().
type Lookup interface {
	Table() Table
	InputExprs() []core.Expression
	// Degree is the highest degree among the input expressions.
	Degree() int
	lookup()
}

// FixedLookup queries the fixed table.
type FixedLookup struct {
	Tag    core.Expression
	Values [3]core.Expression
}

func (l FixedLookup) Table() Table { return FixedTable }

func (l FixedLookup) InputExprs() []core.Expression {
	return []core.Expression{l.Tag, l.Values[0], l.Values[1], l.Values[2]}
}

func (l FixedLookup) Degree() int { return degree(l.InputExprs()) }

func (FixedLookup) lookup() {}

// TxLookup queries the transaction table.
type TxLookup struct {
	ID    core.Expression
	Tag   core.Expression
	Index core.Expression
	Value core.Expression
}

func (l TxLookup) Table() Table { return TxTable }

func (l TxLookup) InputExprs() []core.Expression {
	return []core.Expression{l.ID, l.Tag, l.Index, l.Value}
}

func (l TxLookup) Degree() int { return degree(l.InputExprs()) }

func (TxLookup) lookup() {}

// RwLookup queries the read-write table. The meaning of Values depends on
// Tag, see witness.Rw.
type RwLookup struct {
	Counter core.Expression
	IsWrite core.Expression
	Tag     core.Expression
	Values  [5]core.Expression
}

func (l RwLookup) Table() Table { return RwTable }

func (l RwLookup) InputExprs() []core.Expression {
	exprs := []core.Expression{l.Counter, l.IsWrite, l.Tag}
	return append(exprs, l.Values[:]...)
}

func (l RwLookup) Degree() int { return degree(l.InputExprs()) }

func (RwLookup) lookup() {}

// BytecodeLookup queries the bytecode table for the byte at Index of the
// code identified by Hash.
type BytecodeLookup struct {
	Hash  core.Expression
	Index core.Expression
	Value core.Expression
}

func (l BytecodeLookup) Table() Table { return BytecodeTable }

func (l BytecodeLookup) InputExprs() []core.Expression {
	return []core.Expression{l.Hash, l.Index, l.Value}
}

func (l BytecodeLookup) Degree() int { return degree(l.InputExprs()) }

func (BytecodeLookup) lookup() {}

// ConditionalLookup multiplies every input of Inner by Condition. When the
// condition is zero every input is zero, which the zero row of each table
// satisfies.
type ConditionalLookup struct {
	Condition core.Expression
	Inner     Lookup
}

// Conditional gates inner by condition.
func Conditional(condition core.Expression, inner Lookup) ConditionalLookup {
	return ConditionalLookup{Condition: condition, Inner: inner}
}

func (l ConditionalLookup) Table() Table { return l.Inner.Table() }

func (l ConditionalLookup) InputExprs() []core.Expression {
	inner := l.Inner.InputExprs()
	exprs := make([]core.Expression, len(inner))
	for i, expr := range inner {
		exprs[i] = core.Mul(l.Condition, expr)
	}
	return exprs
}

func (l ConditionalLookup) Degree() int { return degree(l.InputExprs()) }

func (ConditionalLookup) lookup() {}

func degree(exprs []core.Expression) int {
	max := 0
	for _, expr := range exprs {
		if d := expr.Degree(); d > max {
			max = d
		}
	}
	return max
}
