package deque

import (
	"fmt"

	"github.com/juju/errors"
)

const (
	// ErrAlreadyBorrowed is raised when an exclusive view is requested
	// while any other view into the same node is outstanding.
	ErrAlreadyBorrowed = errors.ConstError("already borrowed")
	// ErrAlreadyMutablyBorrowed is raised when a read-only view is
	// requested while an exclusive view into the same node is outstanding.
	ErrAlreadyMutablyBorrowed = errors.ConstError("already mutably borrowed")
	// ErrReleased is raised when a view is used after Release.
	ErrReleased = errors.ConstError("view used after release")
	// ErrStillLinked is raised when a popped node is still reachable
	// through some link at the moment its payload is moved out.
	ErrStillLinked = errors.ConstError("node still linked")
)

// BorrowError is the panic value of an aliasing violation. It is a
// programming error in the caller and is never returned.
type BorrowError struct {
	Op    string
	State int
	Err   error
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("deque: %s: %v (borrow state %d)", e.Op, e.Err, e.State)
}

func (e *BorrowError) Unwrap() error {
	return e.Err
}

// borrowFlag counts outstanding views into a node.
// 0 means free, n > 0 means n read-only views, -1 means one exclusive view.
type borrowFlag int

const exclusive borrowFlag = -1

func (b *borrowFlag) acquireShared(op string) {
	if *b == exclusive {
		panic(&BorrowError{Op: op, State: int(*b), Err: ErrAlreadyMutablyBorrowed})
	}
	*b++
}

func (b *borrowFlag) releaseShared() {
	if *b > 0 {
		*b--
	}
}

func (b *borrowFlag) acquireExclusive(op string) {
	if *b != 0 {
		panic(&BorrowError{Op: op, State: int(*b), Err: ErrAlreadyBorrowed})
	}
	*b = exclusive
}

func (b *borrowFlag) releaseExclusive() {
	if *b == exclusive {
		*b = 0
	}
}

// Ref is a temporary read-only view into an element that is still owned
// by its list. It holds a shared borrow on the element's node until
// Release is called; while it is held, any mutation of that node panics.
type Ref[T any] struct {
	n *node[T]
}

func newRef[T any](n *node[T], op string) *Ref[T] {
	n.borrow.acquireShared(op)
	return &Ref[T]{n: n}
}

// Get returns the element.
func (r *Ref[T]) Get() T {
	if r.n == nil {
		panic(&BorrowError{Op: "Ref.Get", Err: ErrReleased})
	}
	return r.n.elem
}

// Release gives the borrow back. Calling it more than once is a no-op.
func (r *Ref[T]) Release() {
	if r.n == nil {
		return
	}
	r.n.borrow.releaseShared()
	r.n = nil
}

// RefMut is a temporary exclusive view into an element that is still
// owned by its list. No other view into the same node can be acquired
// until it is released.
type RefMut[T any] struct {
	n *node[T]
}

func newRefMut[T any](n *node[T], op string) *RefMut[T] {
	n.borrow.acquireExclusive(op)
	return &RefMut[T]{n: n}
}

func (r *RefMut[T]) node(op string) *node[T] {
	if r.n == nil {
		panic(&BorrowError{Op: op, Err: ErrReleased})
	}
	return r.n
}

// Get returns the element.
func (r *RefMut[T]) Get() T {
	return r.node("RefMut.Get").elem
}

// Set replaces the element in place.
func (r *RefMut[T]) Set(elem T) {
	r.node("RefMut.Set").elem = elem
}

// Update calls fn with a pointer to the element. The pointer must not be
// retained after fn returns.
func (r *RefMut[T]) Update(fn func(elem *T)) {
	fn(&r.node("RefMut.Update").elem)
}

// Release gives the borrow back. Calling it more than once is a no-op.
func (r *RefMut[T]) Release() {
	if r.n == nil {
		return
	}
	r.n.borrow.releaseExclusive()
	r.n = nil
}
