package vybiumzkevm

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// FieldElement is an element of the BN254 scalar field
type FieldElement = fr.Element

// Config represents configuration for circuit synthesis
type Config = utils.Config

// Trace is a recorded execution
type Trace = trace.Trace

// Recorder records an execution into a Trace
type Recorder = trace.Recorder

// StepInfo is the interpreter state before an instruction executes
type StepInfo = trace.StepInfo

// Access is one stack, memory or storage access of a step
type Access = trace.Access

// Block is the circuit witness input replayed from a Trace
type Block = witness.Block

// Witness is an assigned Block
type Witness = evm.Witness

// ExecutionState selects the gadget constraining a step
type ExecutionState = step.ExecutionState

// VerifyFailure is one gate or lookup that does not hold on a row
type VerifyFailure = evm.VerifyFailure

// Result summarizes a checked trace
type Result struct {
	// Randomness used for every random linear combination
	Randomness FieldElement

	// Number of assigned steps
	Steps int

	// Number of rw table entries
	RwEntries int

	// Number of witness columns
	Width int

	// Highest gate or lookup degree
	Degree int

	// Time spent assigning and verifying
	Elapsed time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}
