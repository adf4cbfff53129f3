package util

import (
	"fmt"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
)

type transitionKind uint8

const (
	transitionSame transitionKind = iota
	transitionDelta
	transitionTo
	transitionAny
)

// Transition describes how one step state field changes between a step and
// the next. The zero value keeps the field unchanged.
type Transition struct {
	kind  transitionKind
	value core.Expression
}

// Same keeps the field unchanged.
func Same() Transition { return Transition{kind: transitionSame} }

// Delta requires next = current + delta.
func Delta(delta core.Expression) Transition { return Transition{kind: transitionDelta, value: delta} }

// To requires next = value.
func To(value core.Expression) Transition { return Transition{kind: transitionTo, value: value} }

// Any leaves the field unconstrained.
func Any() Transition { return Transition{kind: transitionAny} }

// StepStateTransition declares the change of every tracked field.
type StepStateTransition struct {
	RwCounter         Transition
	ProgramCounter    Transition
	StackPointer      Transition
	GasLeft           Transition
	MemorySize        Transition
	StateWriteCounter Transition
}

// Constraint is a polynomial that must evaluate to zero on every row.
type Constraint struct {
	Name string
	Expr core.Expression
}

// NamedLookup is a lookup tagged for diagnostics.
type NamedLookup struct {
	Name   string
	Lookup table.Lookup
}

// ConstraintBuilder collects the cells, constraints, lookups and the state
// transition of one execution state.
type ConstraintBuilder struct {
	curr, next *Step
	state      step.ExecutionState

	constraints []Constraint
	lookups     []NamedLookup

	column             int
	rwCounterOffset    int
	stackPointerOffset int
	transition         bool
	errs               []error
}

// NewConstraintBuilder creates a builder for state over the given current
// and next step layouts.
func NewConstraintBuilder(curr, next *Step, state step.ExecutionState) *ConstraintBuilder {
	return &ConstraintBuilder{
		curr:   curr,
		next:   next,
		state:  state,
		column: StepStateColumns,
	}
}

func (cb *ConstraintBuilder) Curr() *Step                         { return cb.curr }
func (cb *ConstraintBuilder) Next() *Step                         { return cb.next }
func (cb *ConstraintBuilder) ExecutionState() step.ExecutionState { return cb.state }

// RwCounterOffset is the number of rw lookups issued so far.
func (cb *ConstraintBuilder) RwCounterOffset() int { return cb.rwCounterOffset }

// StackPointerOffset is the net stack pointer change of the pops and pushes
// issued so far.
func (cb *ConstraintBuilder) StackPointerOffset() int { return cb.stackPointerOffset }

// NumCells is the number of gadget cells allocated so far.
func (cb *ConstraintBuilder) NumCells() int { return cb.column - StepStateColumns }

// HasTransition reports whether the state transition was declared.
func (cb *ConstraintBuilder) HasTransition() bool { return cb.transition }

// QueryCell allocates an unconstrained cell.
func (cb *ConstraintBuilder) QueryCell() Cell {
	cell := NewCell(cb.column, 0)
	cb.column++
	return cell
}

// QueryBool allocates a cell constrained to 0 or 1.
func (cb *ConstraintBuilder) QueryBool() Cell {
	cell := cb.QueryCell()
	cb.RequireBoolean("Constrain cell to be a bool", cell.Expr())
	return cell
}

// QueryByte allocates a cell range checked to [0, 256).
func (cb *ConstraintBuilder) QueryByte() Cell {
	cell := cb.QueryCell()
	cb.RequireInRange("Byte cell range", cell.Expr(), table.Range256)
	return cell
}

// QueryBytes allocates n byte cells.
func (cb *ConstraintBuilder) QueryBytes(n int) []Cell {
	cells := make([]Cell, n)
	for i := range cells {
		cells[i] = cb.QueryByte()
	}
	return cells
}

// QueryWord allocates a 32 byte word.
func (cb *ConstraintBuilder) QueryWord() Word {
	return NewRandomLinearCombination(cb.QueryBytes(WordSize))
}

// QueryMemoryAddress allocates a 5 byte memory address.
func (cb *ConstraintBuilder) QueryMemoryAddress() MemoryAddress {
	return NewRandomLinearCombination(cb.QueryBytes(MemoryAddressSize))
}

// RequireZero adds the constraint expr = 0.
func (cb *ConstraintBuilder) RequireZero(name string, expr core.Expression) {
	cb.constraints = append(cb.constraints, Constraint{Name: name, Expr: expr})
}

// RequireEqual adds the constraint lhs = rhs.
func (cb *ConstraintBuilder) RequireEqual(name string, lhs, rhs core.Expression) {
	cb.RequireZero(name, core.Sub(lhs, rhs))
}

// RequireBoolean adds the constraint expr * (1 - expr) = 0.
func (cb *ConstraintBuilder) RequireBoolean(name string, expr core.Expression) {
	cb.RequireZero(name, core.Mul(expr, Not(expr)))
}

// RequireInRange checks value against a range fixed table with one lookup.
func (cb *ConstraintBuilder) RequireInRange(name string, value core.Expression, tag table.FixedTableTag) {
	if tag.RangeBound() == 0 {
		cb.errs = append(cb.errs, errInvalidConfiguration("%s: %s is not a range table", name, tag))
		return
	}
	cb.AddLookup(name, table.FixedLookup{
		Tag:    tag.Expr(),
		Values: [3]core.Expression{value, core.Const(0), core.Const(0)},
	})
}

// AddLookup registers a lookup.
func (cb *ConstraintBuilder) AddLookup(name string, lookup table.Lookup) {
	cb.lookups = append(cb.lookups, NamedLookup{Name: name, Lookup: lookup})
}

// OpcodeLookup requires the byte at the program counter of the executed code
// to be opcode.
func (cb *ConstraintBuilder) OpcodeLookup(opcode core.Expression) {
	cb.AddLookup("Opcode lookup", table.BytecodeLookup{
		Hash:  cb.curr.State.OpcodeSource.Expr(),
		Index: cb.curr.State.ProgramCounter.Expr(),
		Value: opcode,
	})
}

// StackPop reads value from the top of the stack.
func (cb *ConstraintBuilder) StackPop(value core.Expression) {
	cb.stackLookup(false, cb.stackPointerOffset, value)
	cb.stackPointerOffset++
}

// StackPush writes value to the new top of the stack.
func (cb *ConstraintBuilder) StackPush(value core.Expression) {
	cb.stackPointerOffset--
	cb.stackLookup(true, cb.stackPointerOffset, value)
}

func (cb *ConstraintBuilder) stackLookup(isWrite bool, offset int, value core.Expression) {
	name := "Stack pop"
	if isWrite {
		name = "Stack push"
	}
	cb.rwLookup(name, isWrite, table.RwStack, [5]core.Expression{
		cb.curr.State.CallID.Expr(),
		core.Add(cb.curr.State.StackPointer.Expr(), constInt(offset)),
		value,
		core.Const(0),
		core.Const(0),
	})
}

// MemoryLookup reads or writes one byte of the current call's memory.
func (cb *ConstraintBuilder) MemoryLookup(isWrite core.Expression, address, value core.Expression) {
	cb.rwLookupExpr("Memory lookup", isWrite, table.RwMemory, [5]core.Expression{
		cb.curr.State.CallID.Expr(),
		address,
		value,
		core.Const(0),
		core.Const(0),
	})
}

func (cb *ConstraintBuilder) rwLookup(name string, isWrite bool, tag table.RwTableTag, values [5]core.Expression) {
	rw := core.Const(0)
	if isWrite {
		rw = core.Const(1)
	}
	cb.rwLookupExpr(name, rw, tag, values)
}

func (cb *ConstraintBuilder) rwLookupExpr(name string, isWrite core.Expression, tag table.RwTableTag, values [5]core.Expression) {
	cb.AddLookup(name, table.RwLookup{
		Counter: core.Add(cb.curr.State.RwCounter.Expr(), core.Const(uint64(cb.rwCounterOffset))),
		IsWrite: isWrite,
		Tag:     tag.Expr(),
		Values:  values,
	})
	cb.rwCounterOffset++
}

// RequireStepStateTransition constrains the next step's state. The call
// context (call id, root and create flags, opcode source) never changes. It
// must be called exactly once.
func (cb *ConstraintBuilder) RequireStepStateTransition(t StepStateTransition) {
	if cb.transition {
		cb.errs = append(cb.errs, errInvalidConfiguration("%s: step state transition declared twice", cb.state))
		return
	}
	cb.transition = true

	curr, next := &cb.curr.State, &cb.next.State
	for _, f := range []struct {
		name       string
		curr, next Cell
		transition Transition
	}{
		{"call_id", curr.CallID, next.CallID, Same()},
		{"is_root", curr.IsRoot, next.IsRoot, Same()},
		{"is_create", curr.IsCreate, next.IsCreate, Same()},
		{"opcode_source", curr.OpcodeSource, next.OpcodeSource, Same()},
		{"rw_counter", curr.RwCounter, next.RwCounter, t.RwCounter},
		{"program_counter", curr.ProgramCounter, next.ProgramCounter, t.ProgramCounter},
		{"stack_pointer", curr.StackPointer, next.StackPointer, t.StackPointer},
		{"gas_left", curr.GasLeft, next.GasLeft, t.GasLeft},
		{"memory_size", curr.MemorySize, next.MemorySize, t.MemorySize},
		{"state_write_counter", curr.StateWriteCounter, next.StateWriteCounter, t.StateWriteCounter},
	} {
		name := "State transition constraint of " + f.name
		switch f.transition.kind {
		case transitionSame:
			cb.RequireEqual(name, f.next.Expr(), f.curr.Expr())
		case transitionDelta:
			cb.RequireEqual(name, f.next.Expr(), core.Add(f.curr.Expr(), f.transition.value))
		case transitionTo:
			cb.RequireEqual(name, f.next.Expr(), f.transition.value)
		}
	}
}

// Constraints returns the constraints declared so far, not yet gated by the
// state selector.
func (cb *ConstraintBuilder) Constraints() []Constraint { return cb.constraints }

// Lookups returns the lookups declared so far, not yet gated by the state
// selector.
func (cb *ConstraintBuilder) Lookups() []NamedLookup { return cb.lookups }

// Build gates every constraint and lookup by the selector of the builder's
// state, so they only bind rows in that state. Lookups of other states
// degenerate to the zero row.
func (cb *ConstraintBuilder) Build() ([]Constraint, []NamedLookup, error) {
	if len(cb.errs) > 0 {
		return nil, nil, cb.errs[0]
	}
	selector := cb.curr.Selector(cb.state)
	constraints := make([]Constraint, len(cb.constraints))
	for i, c := range cb.constraints {
		constraints[i] = Constraint{Name: c.Name, Expr: core.Mul(selector, c.Expr)}
	}
	lookups := make([]NamedLookup, len(cb.lookups))
	for i, l := range cb.lookups {
		lookups[i] = NamedLookup{Name: l.Name, Lookup: table.Conditional(selector, l.Lookup)}
	}
	return constraints, lookups, nil
}

// MaxDegree returns the highest degree among the gated constraints and
// lookups.
func (cb *ConstraintBuilder) MaxDegree() int {
	max := 0
	constraints, lookups, err := cb.Build()
	if err != nil {
		return 0
	}
	for _, c := range constraints {
		if d := c.Expr.Degree(); d > max {
			max = d
		}
	}
	for _, l := range lookups {
		if d := l.Lookup.Degree(); d > max {
			max = d
		}
	}
	return max
}

func (cb *ConstraintBuilder) String() string {
	return fmt.Sprintf("ConstraintBuilder{%s, cells: %d, constraints: %d, lookups: %d}",
		cb.state, cb.NumCells(), len(cb.constraints), len(cb.lookups))
}

func constInt(v int) core.Expression {
	if v < 0 {
		return core.Neg(core.Const(uint64(-v)))
	}
	return core.Const(uint64(v))
}
