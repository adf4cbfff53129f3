package vybiumzkevm

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/trace"
)

// Circuit is the public interface of the EVM circuit
type Circuit interface {
	// Synthesize assigns every step of block
	Synthesize(ctx context.Context, block *Block) (*Witness, error)

	// Verify checks an assignment against every gate and lookup
	Verify(ctx context.Context, witness *Witness) error

	// Run replays t into a block, synthesizes and verifies it
	Run(ctx context.Context, t *Trace) (*Result, error)
}

// circuitImpl is the internal implementation of Circuit
type circuitImpl struct {
	config  *Config
	circuit *evm.Circuit
	log     logger.Logger
}

// NewCircuit configures the EVM circuit
func NewCircuit(config *Config) (Circuit, error) {
	if config == nil {
		return nil, newError(ErrInvalidInput, "nil config", nil)
	}
	if err := config.Validate(); err != nil {
		return nil, newError(ErrInvalidConfig, "invalid configuration", err)
	}

	log := logger.NewLogger(config.LogLevel, "vybium-zkevm")
	circuit, err := evm.NewCircuit(config, log)
	if err != nil {
		return nil, newError(classify(err), "failed to configure circuit", err)
	}
	return &circuitImpl{config: config.Clone(), circuit: circuit, log: log}, nil
}

// NewRecorder creates a recorder logging at the configured level
func NewRecorder(config *Config) *Recorder {
	return trace.NewRecorder(logger.NewLogger(config.LogLevel, "vybium-zkevm-trace"))
}

// ReadTrace reads a trace file written by WriteTrace
func ReadTrace(path string, config *Config) (*Trace, error) {
	t, err := trace.ReadFile(path, logger.NewLogger(config.LogLevel, "vybium-zkevm-trace"))
	if err != nil {
		return nil, newError(ErrInvalidTrace, "failed to read trace", err)
	}
	return t, nil
}

// WriteTrace writes t to path, gzip compressed when compress is set
func WriteTrace(path string, t *Trace, compress bool) error {
	if err := trace.WriteFile(path, t, compress); err != nil {
		return newError(ErrInvalidInput, "failed to write trace", err)
	}
	return nil
}

// Synthesize assigns every step of block
func (c *circuitImpl) Synthesize(ctx context.Context, block *Block) (*Witness, error) {
	if block == nil {
		return nil, newError(ErrInvalidInput, "nil block", nil)
	}
	w, err := c.circuit.Assign(ctx, block)
	if err != nil {
		return nil, newError(classify(err), "witness assignment failed", err)
	}
	return w, nil
}

// Verify checks an assignment against every gate and lookup
func (c *circuitImpl) Verify(ctx context.Context, w *Witness) error {
	if w == nil || w.Block == nil || w.Region == nil {
		return newError(ErrInvalidInput, "incomplete witness", nil)
	}
	if err := c.circuit.Verify(ctx, w); err != nil {
		return newError(classify(err), "verification failed", err)
	}
	return nil
}

// Run replays t into a block, synthesizes and verifies it. The randomness is
// taken from the configuration, or derived from t when unset.
func (c *circuitImpl) Run(ctx context.Context, t *Trace) (*Result, error) {
	if t == nil {
		return nil, newError(ErrInvalidInput, "nil trace", nil)
	}
	start := time.Now()

	randomness := trace.DeriveRandomness(t)
	if c.config.Randomness != nil {
		randomness = *c.config.Randomness
	}
	block, err := t.ToBlock(randomness)
	if err != nil {
		return nil, newError(ErrInvalidTrace, "failed to replay trace", err)
	}

	w, err := c.Synthesize(ctx, block)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(ctx, w); err != nil {
		return nil, err
	}

	result := &Result{
		Randomness: randomness,
		Steps:      w.Region.Height(),
		RwEntries:  len(block.Rws),
		Width:      c.circuit.Width(),
		Degree:     c.circuit.MaxDegree(),
		Elapsed:    time.Since(start),
	}
	c.log.Infof("checked %d steps and %d rw entries", result.Steps, result.RwEntries)
	return result, nil
}

// VerifyFailures returns the failures listed by an error returned from Verify
// or Run, or nil when err carries none.
func VerifyFailures(err error) []VerifyFailure {
	var verr *evm.VerifyError
	if errors.As(err, &verr) {
		return verr.Failures
	}
	return nil
}
