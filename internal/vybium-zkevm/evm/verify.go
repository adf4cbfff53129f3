package evm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/evm/util"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/table"
)

// FailureKind classifies a VerifyFailure.
type FailureKind uint8

const (
	ConstraintFailure FailureKind = iota
	LookupFailure
	UnassignedFailure
)

func (k FailureKind) String() string {
	switch k {
	case ConstraintFailure:
		return "constraint"
	case LookupFailure:
		return "lookup"
	case UnassignedFailure:
		return "unassigned cell"
	default:
		return fmt.Sprintf("FailureKind(%d)", uint8(k))
	}
}

// VerifyFailure is one gate or lookup that does not hold on a row.
type VerifyFailure struct {
	Row  int
	Kind FailureKind
	Name string
}

func (f VerifyFailure) String() string {
	return fmt.Sprintf("row %d: %s %q", f.Row, f.Kind, f.Name)
}

// VerifyError lists every failure found by Verify.
type VerifyError struct {
	Failures []VerifyFailure
}

// maxReportedFailures bounds the failures printed by VerifyError.Error.
const maxReportedFailures = 8

func (e *VerifyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d verification failures", len(e.Failures))
	for i, f := range e.Failures {
		if i == maxReportedFailures {
			fmt.Fprintf(&b, "; and %d more", len(e.Failures)-i)
			break
		}
		b.WriteString("; ")
		b.WriteString(f.String())
	}
	return b.String()
}

// lookupTables are the rows every lookup input is checked against.
type lookupTables map[table.Table]*table.Rows

func (c *Circuit) lookupTables(w *Witness) lookupTables {
	tables := make(lookupTables, 4)
	tables[table.FixedTable] = c.fixed
	tables[table.TxTable] = w.Block.TxRows()
	tables[table.RwTable] = w.Block.RwRows()
	tables[table.BytecodeTable] = w.Block.BytecodeRows()
	return tables
}

// Verify checks the assignment row by row: every gate must evaluate to zero
// and every lookup input must be a row of its table. Rows are checked
// concurrently. The returned error is a *VerifyError marked with
// ErrConstraintUnsatisfied, ErrLookupMiss or ErrWitness by the kinds of
// failures found.
func (c *Circuit) Verify(ctx context.Context, w *Witness) error {
	if w.Region.Width() != c.width {
		return errors.Mark(errors.Newf("region has %d columns, circuit has %d", w.Region.Width(), c.width), ErrWitness)
	}
	tables := c.lookupTables(w)
	constraints := c.Constraints()
	lookups := c.Lookups()

	perRow := make([][]VerifyFailure, w.Region.Height())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for row := range perRow {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perRow[row] = verifyRow(w.Region.Evaluator(row, w.Block.Randomness), row, constraints, lookups, tables)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	verr := &VerifyError{}
	for _, failures := range perRow {
		verr.Failures = append(verr.Failures, failures...)
	}
	if len(verr.Failures) == 0 {
		c.log.Debugf("verified %d rows against %d constraints and %d lookups", len(perRow), len(constraints), len(lookups))
		return nil
	}

	var err error = verr
	seen := make(map[FailureKind]bool)
	for _, f := range verr.Failures {
		if seen[f.Kind] {
			continue
		}
		seen[f.Kind] = true
		switch f.Kind {
		case ConstraintFailure:
			err = errors.Mark(err, ErrConstraintUnsatisfied)
		case LookupFailure:
			err = errors.Mark(err, ErrLookupMiss)
		case UnassignedFailure:
			err = errors.Mark(err, ErrWitness)
		}
	}
	c.log.Errorf("verification failed: %v", verr)
	return err
}

func verifyRow(ev *util.RowEvaluator, row int, constraints []util.Constraint, lookups []util.NamedLookup, tables lookupTables) []VerifyFailure {
	var failures []VerifyFailure
	for _, constraint := range constraints {
		if v := constraint.Expr.Evaluate(ev); !v.IsZero() {
			failures = append(failures, VerifyFailure{Row: row, Kind: ConstraintFailure, Name: constraint.Name})
		}
	}
	for _, lookup := range lookups {
		exprs := lookup.Lookup.InputExprs()
		values := make([]fr.Element, len(exprs))
		for i, expr := range exprs {
			values[i] = expr.Evaluate(ev)
		}
		if !tables[lookup.Lookup.Table()].Contains(values) {
			failures = append(failures, VerifyFailure{Row: row, Kind: LookupFailure, Name: lookup.Name})
		}
	}
	for _, q := range ev.Unassigned() {
		failures = append(failures, VerifyFailure{Row: row, Kind: UnassignedFailure, Name: q.String()})
	}
	return failures
}
