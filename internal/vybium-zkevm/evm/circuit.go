// Package evm assembles the execution gadgets into the EVM circuit. Every
// step of a block takes one row. A one-hot selector over the execution
// states picks the gadget whose constraints bind the row, and the gadget's
// state transition links the row to the next one.
package evm

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/core"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/execution"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/logger"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/step"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/witness"
)

// configured is a gadget together with what its configuration declared.
type configured struct {
	gadget      execution.Gadget
	constraints []util.Constraint
	lookups     []util.NamedLookup
	rwAccesses  int
	numCells    int
	degree      int
}

// Circuit is the configured EVM circuit. It is immutable after NewCircuit
// and safe for concurrent use.
type Circuit struct {
	curr, next  *util.Step
	gadgets     [step.NumStates]configured
	global      []util.Constraint
	fixed       *table.Rows
	width       int
	maxDegree   int
	parallelism int
	log         logger.Logger
}

// Witness is an assigned block.
type Witness struct {
	Block  *witness.Block
	Region *util.Region
}

// NewCircuit configures every execution gadget.
func NewCircuit(cfg *utils.Config, log logger.Logger) (*Circuit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Mark(err, ErrConfiguration)
	}

	c := &Circuit{
		curr:        util.NewStep(0),
		next:        util.NewStep(1),
		parallelism: cfg.Parallelism,
		log:         log,
	}
	c.fixed = table.NewFixedRows(cfg.FixedTableTags...)

	cells := 0
	for _, state := range step.States() {
		cb := util.NewConstraintBuilder(c.curr, c.next, state)
		gadget, err := execution.Configure(cb)
		if err != nil {
			return nil, errors.Mark(err, ErrConfiguration)
		}
		if state.IsTerminal() == cb.HasTransition() {
			return nil, errors.Mark(errors.Newf("gadget %s: terminal states declare no transition, others exactly one", gadget.Name()), ErrConfiguration)
		}
		constraints, lookups, err := cb.Build()
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "gadget %s", gadget.Name()), ErrConfiguration)
		}
		degree := cb.MaxDegree()
		if degree > cfg.MaxDegree {
			return nil, errors.Mark(errors.Newf("gadget %s has degree %d, bound is %d", gadget.Name(), degree, cfg.MaxDegree), ErrConfiguration)
		}
		c.gadgets[state] = configured{
			gadget:      gadget,
			constraints: constraints,
			lookups:     lookups,
			rwAccesses:  cb.RwCounterOffset(),
			numCells:    cb.NumCells(),
			degree:      degree,
		}
		cells = max(cells, cb.NumCells())
		c.maxDegree = max(c.maxDegree, degree)
		log.Debugf("configured %s: %d cells, %d constraints, %d lookups, degree %d",
			gadget.Name(), cb.NumCells(), len(constraints), len(lookups), degree)
	}
	c.width = util.StepStateColumns + cells
	c.global = globalConstraints(c.curr)

	log.Infof("configured %d execution states: width %d, degree %d, %d fixed rows",
		step.NumStates, c.width, c.maxDegree, c.fixed.Len())
	return c, nil
}

// globalConstraints bind every row regardless of its state.
func globalConstraints(curr *util.Step) []util.Constraint {
	var constraints []util.Constraint
	selectors := make([]core.Expression, len(curr.State.ExecutionState))
	for i, cell := range curr.State.ExecutionState {
		selectors[i] = cell.Expr()
		constraints = append(constraints, util.Constraint{
			Name: "Execution state selector " + step.ExecutionState(i).String() + " is boolean",
			Expr: core.Mul(cell.Expr(), util.Not(cell.Expr())),
		})
	}
	constraints = append(constraints,
		util.Constraint{
			Name: "Exactly one execution state is selected",
			Expr: core.Sub(core.Add(selectors...), core.Const(1)),
		},
		util.Constraint{
			Name: "is_root is boolean",
			Expr: core.Mul(curr.State.IsRoot.Expr(), util.Not(curr.State.IsRoot.Expr())),
		},
		util.Constraint{
			Name: "is_create is boolean",
			Expr: core.Mul(curr.State.IsCreate.Expr(), util.Not(curr.State.IsCreate.Expr())),
		},
	)
	return constraints
}

// Width is the number of witness columns.
func (c *Circuit) Width() int { return c.width }

// MaxDegree is the highest degree over every gate and lookup.
func (c *Circuit) MaxDegree() int { return c.maxDegree }

// Constraints returns the global gates followed by the gated gates of every
// execution state.
func (c *Circuit) Constraints() []util.Constraint {
	constraints := append([]util.Constraint(nil), c.global...)
	for _, g := range c.gadgets {
		constraints = append(constraints, g.constraints...)
	}
	return constraints
}

// Lookups returns the gated lookups of every execution state.
func (c *Circuit) Lookups() []util.NamedLookup {
	var lookups []util.NamedLookup
	for _, g := range c.gadgets {
		lookups = append(lookups, g.lookups...)
	}
	return lookups
}

// Gadget returns the gadget configured for state.
func (c *Circuit) Gadget(state step.ExecutionState) (execution.Gadget, bool) {
	if !state.Valid() {
		return nil, false
	}
	return c.gadgets[state].gadget, true
}

// Fixed returns the fixed table rows loaded by the circuit.
func (c *Circuit) Fixed() *table.Rows { return c.fixed }

// Assign assigns every step of block. Every transaction must end in a
// terminal step. Steps are assigned concurrently; each writes only its own
// row. The first failing step aborts the assignment.
func (c *Circuit) Assign(ctx context.Context, block *witness.Block) (*Witness, error) {
	start := time.Now()
	if err := block.Validate(); err != nil {
		return nil, errors.Mark(err, ErrWitness)
	}
	refs, err := block.Steps()
	if err != nil {
		return nil, errors.Mark(err, ErrWitness)
	}
	if len(refs) == 0 {
		return nil, errors.Mark(errors.New("block has no steps"), ErrWitness)
	}

	region := util.NewRegion(c.width, len(refs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, ref := range refs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			last := i == len(refs)-1 || refs[i+1].Tx != ref.Tx
			return c.assignStep(region, i, last, block, ref)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h, m, s := logger.ParseTime(time.Since(start))
	c.log.Infof("assigned %d steps and %d rw entries in %02d:%02d:%02d", len(refs), len(block.Rws), h, m, s)
	return &Witness{Block: block, Region: region}, nil
}

func (c *Circuit) assignStep(region *util.Region, offset int, last bool, block *witness.Block, ref witness.StepRef) error {
	es := ref.Step
	state := es.ExecutionState
	g := c.gadgets[state]
	name := g.gadget.Name()

	switch {
	case last && !state.IsTerminal():
		return stepError(offset, name, state, errors.New("the last step of a transaction must be terminal"))
	case !last && state.IsTerminal():
		return stepError(offset, name, state, errors.New("a terminal step must end its transaction"))
	case len(es.RwIndices) != g.rwAccesses:
		return stepError(offset, name, state, errors.Newf("gadget accesses %d rw entries, step has %d", g.rwAccesses, len(es.RwIndices)))
	}
	if err := c.curr.AssignExecStep(region, offset, block.Randomness, ref.Call, es); err != nil {
		return stepError(offset, name, state, err)
	}
	if err := g.gadget.Assign(region, offset, block, ref.Call, es); err != nil {
		return stepError(offset, name, state, err)
	}
	return nil
}
