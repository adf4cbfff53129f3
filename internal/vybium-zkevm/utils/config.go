package utils

import (
	"runtime"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/op/go-logging"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
)

// Config represents the configuration of circuit synthesis
type Config struct {
	// Randomness is the RLC scalar. When nil it is derived from the trace.
	Randomness *fr.Element

	// Fixed table tags loaded for lookups
	FixedTableTags []table.FixedTableTag

	// Parallelism bounds the number of steps assigned concurrently
	Parallelism int

	// MaxDegree is the highest gate or lookup degree the backend accepts
	MaxDegree int

	// LogLevel is a go-logging level name
	LogLevel string
}

// DefaultConfig returns a configuration with the default fixed tables, one
// assignment worker per CPU and the degree bound of the EVM circuit
func DefaultConfig() *Config {
	return &Config{
		FixedTableTags: slices.Clone(table.DefaultFixedTableTags),
		Parallelism:    runtime.GOMAXPROCS(0),
		MaxDegree:      9,
		LogLevel:       "INFO",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Parallelism <= 0 {
		return errors.Newf("parallelism must be positive, got %d", c.Parallelism)
	}

	if c.MaxDegree < 2 {
		return errors.Newf("max degree must be at least 2, got %d", c.MaxDegree)
	}

	for _, tag := range c.FixedTableTags {
		if tag < table.Range16 || tag > table.ResponsibleOpcode {
			return errors.Newf("unknown fixed table tag %d", uint64(tag))
		}
	}

	if _, err := logging.LogLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}

	return nil
}

// WithRandomness sets the RLC scalar
func (c *Config) WithRandomness(randomness fr.Element) *Config {
	c.Randomness = &randomness
	return c
}

// WithFixedTableTags sets the fixed tables to load
func (c *Config) WithFixedTableTags(tags ...table.FixedTableTag) *Config {
	c.FixedTableTags = slices.Clone(tags)
	return c
}

// WithParallelism sets the number of assignment workers
func (c *Config) WithParallelism(workers int) *Config {
	c.Parallelism = workers
	return c
}

// WithMaxDegree sets the degree bound
func (c *Config) WithMaxDegree(degree int) *Config {
	c.MaxDegree = degree
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := &Config{
		FixedTableTags: slices.Clone(c.FixedTableTags),
		Parallelism:    c.Parallelism,
		MaxDegree:      c.MaxDegree,
		LogLevel:       c.LogLevel,
	}
	if c.Randomness != nil {
		randomness := *c.Randomness
		clone.Randomness = &randomness
	}
	return clone
}
