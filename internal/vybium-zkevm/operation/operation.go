// Package operation models the stack, memory and storage accesses recorded
// while an execution trace is built. Every access is stamped with a
// GlobalCounter so that accesses to one location can later be replayed in
// chronological order by the read/write consistency argument.
package operation

import (
	"cmp"
	"fmt"
)

// GlobalCounter stamps recorded operations. The zero value is the origin, so
// the first call to IncPre returns 1.
type GlobalCounter uint64

// IncPre advances the counter and returns the new value.
func (gc *GlobalCounter) IncPre() GlobalCounter {
	*gc++
	return *gc
}

// RW tells whether an operation reads or writes its location.
type RW bool

const (
	Read  RW = false
	Write RW = true
)

// IsWrite reports whether rw is Write.
func (rw RW) IsWrite() bool { return bool(rw) }

func (rw RW) String() string {
	if rw {
		return "WRITE"
	}
	return "READ"
}

// Target identifies the store an operation belongs to.
type Target uint8

const (
	Memory Target = iota + 1
	Stack
	Storage
)

func (t Target) String() string {
	switch t {
	case Memory:
		return "Memory"
	case Stack:
		return "Stack"
	case Storage:
		return "Storage"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// Op is implemented by the three payload kinds. Compare orders payloads by
// their location (address, then key) only.
type Op[T any] interface {
	Target() Target
	RW() RW
	Compare(other T) int
	payload()
}

// Operation is an immutable (counter, payload) record.
type Operation[T Op[T]] struct {
	gc GlobalCounter
	op T
}

// NewOperation stamps op with gc.
func NewOperation[T Op[T]](gc GlobalCounter, op T) Operation[T] {
	return Operation[T]{gc: gc, op: op}
}

// GC returns the global counter the operation was stamped with.
func (o Operation[T]) GC() GlobalCounter { return o.gc }

// Op returns the payload.
func (o Operation[T]) Op() T { return o.op }

// RW returns whether the operation is a read or a write.
func (o Operation[T]) RW() RW { return o.op.RW() }

// Target returns the store the operation belongs to.
func (o Operation[T]) Target() Target { return o.op.Target() }

// Compare orders by location first and by counter second. For one location
// this reproduces the order in which the accesses happened.
func (o Operation[T]) Compare(other Operation[T]) int {
	if c := o.op.Compare(other.op); c != 0 {
		return c
	}
	return cmp.Compare(o.gc, other.gc)
}

func (o Operation[T]) String() string {
	return fmt.Sprintf("Operation{gc: %d, %v}", o.gc, o.op)
}

func (o Operation[T]) sealed() {}

// AnyOperation is satisfied by every Operation instantiation.
type AnyOperation interface {
	GC() GlobalCounter
	RW() RW
	Target() Target
	sealed()
}

// OperationRef points at the Index-th (1-based) operation of a target store.
// Refs are computed from the store length right after insertion, so later
// insertions never invalidate them.
type OperationRef struct {
	Target Target
	Index  int
}

func (r OperationRef) String() string {
	return fmt.Sprintf("%s#%d", r.Target, r.Index)
}
