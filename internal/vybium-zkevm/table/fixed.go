// Package table holds the lookup tables of the EVM circuit: the fixed tables
// generated once from a tag, the tag enums of the dynamic tables, and the
// Lookup requests gadgets register against them.
package table

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
)

// FixedTableTag identifies one synthesized fixed table. Every fixed row is
// (tag, v0, v1, v2).
type FixedTableTag uint64

const (
	Range16 FixedTableTag = iota + 1
	Range17
	Range32
	Range256
	Range512
	SignByte
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	// ResponsibleOpcode binds every opcode to the execution state that
	// handles it: (tag, state, opcode, 0).
	ResponsibleOpcode
)

// FixedWidth is the number of columns of the fixed table.
const FixedWidth = 4

// DefaultFixedTableTags are the tags loaded when no explicit set is
// configured. The bitwise tables hold 65536 rows each and are only loaded
// on request.
var DefaultFixedTableTags = []FixedTableTag{
	Range16, Range17, Range32, Range256, Range512, SignByte, ResponsibleOpcode,
}

// AllFixedTableTags lists every tag in declaration order.
func AllFixedTableTags() []FixedTableTag {
	tags := make([]FixedTableTag, 0, int(ResponsibleOpcode))
	for tag := Range16; tag <= ResponsibleOpcode; tag++ {
		tags = append(tags, tag)
	}
	return tags
}

// Expr returns the tag as a constant expression.
func (t FixedTableTag) Expr() core.Expression { return core.Const(uint64(t)) }

func (t FixedTableTag) String() string {
	switch t {
	case Range16:
		return "Range16"
	case Range17:
		return "Range17"
	case Range32:
		return "Range32"
	case Range256:
		return "Range256"
	case Range512:
		return "Range512"
	case SignByte:
		return "SignByte"
	case BitwiseAnd:
		return "BitwiseAnd"
	case BitwiseOr:
		return "BitwiseOr"
	case BitwiseXor:
		return "BitwiseXor"
	case ResponsibleOpcode:
		return "ResponsibleOpcode"
	default:
		return fmt.Sprintf("FixedTableTag(%d)", uint64(t))
	}
}

// RangeBound returns the exclusive upper bound of a range tag, or 0 when t is
// not a range tag.
func (t FixedTableTag) RangeBound() uint64 {
	switch t {
	case Range16:
		return 16
	case Range17:
		return 17
	case Range32:
		return 32
	case Range256:
		return 256
	case Range512:
		return 512
	default:
		return 0
	}
}

// Build generates the rows of t in a deterministic order.
func (t FixedTableTag) Build() [][FixedWidth]fr.Element {
	tag := core.NewElement(uint64(t))
	row := func(a, b, c uint64) [FixedWidth]fr.Element {
		return [FixedWidth]fr.Element{tag, core.NewElement(a), core.NewElement(b), core.NewElement(c)}
	}

	var rows [][FixedWidth]fr.Element
	switch t {
	case Range16, Range17, Range32, Range256, Range512:
		bound := t.RangeBound()
		rows = make([][FixedWidth]fr.Element, 0, bound)
		for v := uint64(0); v < bound; v++ {
			rows = append(rows, row(v, 0, 0))
		}
	case SignByte:
		rows = make([][FixedWidth]fr.Element, 0, 256)
		for v := uint64(0); v < 256; v++ {
			rows = append(rows, row(v, (v>>7)*0xFF, 0))
		}
	case BitwiseAnd, BitwiseOr, BitwiseXor:
		rows = make([][FixedWidth]fr.Element, 0, 256*256)
		for lhs := uint64(0); lhs < 256; lhs++ {
			for rhs := uint64(0); rhs < 256; rhs++ {
				var out uint64
				switch t {
				case BitwiseAnd:
					out = lhs & rhs
				case BitwiseOr:
					out = lhs | rhs
				default:
					out = lhs ^ rhs
				}
				rows = append(rows, row(lhs, rhs, out))
			}
		}
	case ResponsibleOpcode:
		for _, state := range step.States() {
			for _, op := range state.ResponsibleOpcodes() {
				rows = append(rows, row(uint64(state), uint64(op), 0))
			}
		}
	}
	return rows
}

// NewFixedRows builds the fixed table for tags: the zero row followed by the
// rows of every tag in the given order.
func NewFixedRows(tags ...FixedTableTag) *Rows {
	rows := NewRows(FixedWidth)
	var zero [FixedWidth]fr.Element
	rows.MustAdd(zero[:]...)
	for _, tag := range tags {
		for _, row := range tag.Build() {
			rows.MustAdd(row[:]...)
		}
	}
	return rows
}

var (
	fixedOnce sync.Once
	fixed     *Rows
)

// Fixed returns the shared fixed table holding DefaultFixedTableTags. It is
// built on first use and must not be modified.
func Fixed() *Rows {
	fixedOnce.Do(func() {
		fixed = NewFixedRows(DefaultFixedTableTags...)
	})
	return fixed
}
