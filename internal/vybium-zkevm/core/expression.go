package core

import (
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Evaluator resolves the leaves of an Expression at a concrete row.
type Evaluator interface {
	// Query returns the value of column at the evaluated row plus rotation.
	Query(column, rotation int) fr.Element
	// Challenge returns the randomness used by random linear combinations.
	Challenge() fr.Element
}

// Expression is a symbolic polynomial over advice cells, constants and the
// randomness challenge.
//
// Gates and lookups are built from expressions at configure time and only
// evaluated later, against an assignment.
type Expression interface {
	// Degree returns the polynomial degree in advice queries.
	Degree() int
	// Evaluate computes the expression value under ev.
	Evaluate(ev Evaluator) fr.Element
	String() string
}

// Query is an advice cell reference relative to the evaluated row.
type Query struct {
	Column   int
	Rotation int
}

func (q Query) Degree() int { return 1 }

func (q Query) Evaluate(ev Evaluator) fr.Element {
	return ev.Query(q.Column, q.Rotation)
}

func (q Query) String() string {
	if q.Rotation == 0 {
		return fmt.Sprintf("a%d", q.Column)
	}
	return fmt.Sprintf("a%d[%+d]", q.Column, q.Rotation)
}

type constant struct {
	value fr.Element
}

func (c constant) Degree() int { return 0 }

func (c constant) Evaluate(_ Evaluator) fr.Element { return c.value }

func (c constant) String() string { return c.value.String() }

type challenge struct{}

func (challenge) Degree() int { return 0 }

func (challenge) Evaluate(ev Evaluator) fr.Element { return ev.Challenge() }

func (challenge) String() string { return "r" }

type sum struct {
	terms []Expression
}

func (s sum) Degree() int {
	d := 0
	for _, t := range s.terms {
		d = max(d, t.Degree())
	}
	return d
}

func (s sum) Evaluate(ev Evaluator) fr.Element {
	var acc fr.Element
	for _, t := range s.terms {
		v := t.Evaluate(ev)
		acc.Add(&acc, &v)
	}
	return acc
}

func (s sum) String() string {
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

type product struct {
	lhs, rhs Expression
}

func (p product) Degree() int { return p.lhs.Degree() + p.rhs.Degree() }

func (p product) Evaluate(ev Evaluator) fr.Element {
	l := p.lhs.Evaluate(ev)
	if l.IsZero() {
		return l
	}
	r := p.rhs.Evaluate(ev)
	l.Mul(&l, &r)
	return l
}

func (p product) String() string { return p.lhs.String() + "*" + p.rhs.String() }

type negated struct {
	inner Expression
}

func (n negated) Degree() int { return n.inner.Degree() }

func (n negated) Evaluate(ev Evaluator) fr.Element {
	v := n.inner.Evaluate(ev)
	v.Neg(&v)
	return v
}

func (n negated) String() string { return "-" + n.inner.String() }

// Const returns the constant expression v.
func Const(v uint64) Expression {
	return constant{value: NewElement(v)}
}

// ConstElement returns the constant expression e.
func ConstElement(e fr.Element) Expression {
	return constant{value: e}
}

// Randomness returns the challenge leaf used for random linear combinations.
func Randomness() Expression {
	return challenge{}
}

// Add returns the sum of terms; an empty sum is zero.
func Add(terms ...Expression) Expression {
	switch len(terms) {
	case 0:
		return Const(0)
	case 1:
		return terms[0]
	}
	flat := make([]Expression, 0, len(terms))
	for _, t := range terms {
		if s, ok := t.(sum); ok {
			flat = append(flat, s.terms...)
			continue
		}
		flat = append(flat, t)
	}
	return sum{terms: flat}
}

// Sub returns lhs - rhs.
func Sub(lhs, rhs Expression) Expression {
	return Add(lhs, Neg(rhs))
}

// Mul returns the product of factors; an empty product is one.
func Mul(factors ...Expression) Expression {
	if len(factors) == 0 {
		return Const(1)
	}
	acc := factors[0]
	for _, f := range factors[1:] {
		acc = product{lhs: acc, rhs: f}
	}
	return acc
}

// Neg returns -e.
func Neg(e Expression) Expression {
	if n, ok := e.(negated); ok {
		return n.inner
	}
	return negated{inner: e}
}

// Scale returns e * factor.
func Scale(e Expression, factor fr.Element) Expression {
	return product{lhs: constant{value: factor}, rhs: e}
}
