package util

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// StepStateColumns is the number of leading columns holding the step state.
// Gadget cells are allocated after them.
const StepStateColumns = step.NumStates + 10

// StepState are the cells every step carries regardless of its execution
// state.
type StepState struct {
	// ExecutionState is a one-hot selector, one cell per state.
	ExecutionState    []Cell
	RwCounter         Cell
	CallID            Cell
	IsRoot            Cell
	IsCreate          Cell
	OpcodeSource      Cell
	ProgramCounter    Cell
	StackPointer      Cell
	GasLeft           Cell
	MemorySize        Cell
	StateWriteCounter Cell
}

// Step is the step state of the step at a rotation: 0 for the current step,
// 1 for the next one.
type Step struct {
	State StepState
}

// NewStep lays out the step state at rotation.
func NewStep(rotation int) *Step {
	column := 0
	next := func() Cell {
		c := NewCell(column, rotation)
		column++
		return c
	}
	s := &Step{}
	s.State.ExecutionState = make([]Cell, step.NumStates)
	for i := range s.State.ExecutionState {
		s.State.ExecutionState[i] = next()
	}
	s.State.RwCounter = next()
	s.State.CallID = next()
	s.State.IsRoot = next()
	s.State.IsCreate = next()
	s.State.OpcodeSource = next()
	s.State.ProgramCounter = next()
	s.State.StackPointer = next()
	s.State.GasLeft = next()
	s.State.MemorySize = next()
	s.State.StateWriteCounter = next()
	return s
}

// Selector returns the selector cell expression of state.
func (s *Step) Selector(state step.ExecutionState) core.Expression {
	return s.State.ExecutionState[state].Expr()
}

// AssignExecStep writes the step state of es executing in call.
func (s *Step) AssignExecStep(region Assigner, offset int, randomness fr.Element, call *witness.Call, es *witness.ExecStep) error {
	if !es.ExecutionState.Valid() {
		return errInvalidWitness("unknown execution state %d", uint8(es.ExecutionState))
	}
	for i, cell := range s.State.ExecutionState {
		if err := cell.Assign(region, offset, core.NewElementFromBool(i == int(es.ExecutionState))); err != nil {
			return err
		}
	}
	assignments := []struct {
		cell  Cell
		value fr.Element
	}{
		{s.State.RwCounter, core.NewElement(es.RwCounter)},
		{s.State.CallID, core.NewElement(call.ID)},
		{s.State.IsRoot, core.NewElementFromBool(call.IsRoot)},
		{s.State.IsCreate, core.NewElementFromBool(call.IsCreate)},
		{s.State.OpcodeSource, call.OpcodeSource(randomness)},
		{s.State.ProgramCounter, core.NewElement(es.ProgramCounter)},
		{s.State.StackPointer, core.NewElement(es.StackPointer)},
		{s.State.GasLeft, core.NewElement(es.GasLeft)},
		{s.State.MemorySize, core.NewElement(es.MemorySize)},
		{s.State.StateWriteCounter, core.NewElement(es.StateWriteCounter)},
	}
	for _, a := range assignments {
		if err := a.cell.Assign(region, offset, a.value); err != nil {
			return err
		}
	}
	return nil
}
