// Package deque implements a generic doubly linked list that can be used
// as a double-ended queue.
//
// Every node is reachable from both of its neighbours. Access to a node's
// contents is arbitrated at runtime: any number of read-only views or a
// single exclusive view may be outstanding at a time, and every mutation
// of the list takes an exclusive view of the nodes it touches. Conflicting
// access panics with a *BorrowError.
//
// A List is not safe for concurrent use.
package deque

// node is one element of a List. links counts the slots that point at it:
// the list's head and tail and the next/prev fields of its neighbours.
type node[T any] struct {
	elem   T
	next   *node[T]
	prev   *node[T]
	links  int
	borrow borrowFlag
}

// take empties the slot and returns the node it held.
func take[T any](slot **node[T]) *node[T] {
	n := *slot
	if n != nil {
		*slot = nil
		n.links--
	}
	return n
}

// put stores n in an empty slot.
func put[T any](slot **node[T], n *node[T]) {
	*slot = n
	n.links++
}

// List is a doubly linked list. The zero value is an empty list ready
// to use.
type List[T any] struct {
	head *node[T]
	tail *node[T]
	len  int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	return l.len
}

// IsEmpty reports whether the list holds no elements.
func (l *List[T]) IsEmpty() bool {
	return l.head == nil
}

// PushFront inserts elem at the front of the list.
func (l *List[T]) PushFront(elem T) {
	n := &node[T]{elem: elem}
	if old := l.head; old != nil {
		old.borrow.acquireExclusive("PushFront")
		put(&old.prev, n)
		old.borrow.releaseExclusive()
		put(&n.next, take(&l.head))
	} else {
		put(&l.tail, n)
	}
	put(&l.head, n)
	l.len++
}

// PushBack inserts elem at the back of the list.
func (l *List[T]) PushBack(elem T) {
	n := &node[T]{elem: elem}
	if old := l.tail; old != nil {
		old.borrow.acquireExclusive("PushBack")
		put(&old.next, n)
		old.borrow.releaseExclusive()
		put(&n.prev, take(&l.tail))
	} else {
		put(&l.head, n)
	}
	put(&l.tail, n)
	l.len++
}

// PopFront removes the front element and returns it. The boolean is
// false when the list is empty.
func (l *List[T]) PopFront() (T, bool) {
	const op = "PopFront"
	old := l.head
	if old == nil {
		var zero T
		return zero, false
	}

	old.borrow.acquireExclusive(op)
	defer old.borrow.releaseExclusive()
	next := old.next
	if next != nil {
		next.borrow.acquireExclusive(op)
		defer next.borrow.releaseExclusive()
	}

	take(&l.head)
	if next != nil {
		take(&old.next)
		take(&next.prev)
		put(&l.head, next)
	} else {
		take(&l.tail)
	}
	return l.extract(old, op), true
}

// PopBack removes the back element and returns it. The boolean is false
// when the list is empty.
func (l *List[T]) PopBack() (T, bool) {
	const op = "PopBack"
	old := l.tail
	if old == nil {
		var zero T
		return zero, false
	}

	old.borrow.acquireExclusive(op)
	defer old.borrow.releaseExclusive()
	prev := old.prev
	if prev != nil {
		prev.borrow.acquireExclusive(op)
		defer prev.borrow.releaseExclusive()
	}

	take(&l.tail)
	if prev != nil {
		take(&old.prev)
		take(&prev.next)
		put(&l.tail, prev)
	} else {
		take(&l.head)
	}
	return l.extract(old, op), true
}

// extract moves the payload out of a node that has just been unlinked.
func (l *List[T]) extract(n *node[T], op string) T {
	if n.links != 0 {
		panic(&BorrowError{Op: op, State: n.links, Err: ErrStillLinked})
	}
	elem := n.elem
	var zero T
	n.elem = zero
	l.len--
	return elem
}

// Clear removes every element. Nodes are released one at a time from the
// front.
func (l *List[T]) Clear() {
	for {
		if _, ok := l.PopFront(); !ok {
			return
		}
	}
}

// PeekFront returns a read-only view of the front element. The view must
// be released before the front of the list is mutated.
func (l *List[T]) PeekFront() (*Ref[T], bool) {
	if l.head == nil {
		return nil, false
	}
	return newRef(l.head, "PeekFront"), true
}

// PeekBack returns a read-only view of the back element. The view must
// be released before the back of the list is mutated.
func (l *List[T]) PeekBack() (*Ref[T], bool) {
	if l.tail == nil {
		return nil, false
	}
	return newRef(l.tail, "PeekBack"), true
}

// PeekFrontMut returns an exclusive view of the front element.
func (l *List[T]) PeekFrontMut() (*RefMut[T], bool) {
	if l.head == nil {
		return nil, false
	}
	return newRefMut(l.head, "PeekFrontMut"), true
}

// PeekBackMut returns an exclusive view of the back element.
func (l *List[T]) PeekBackMut() (*RefMut[T], bool) {
	if l.tail == nil {
		return nil, false
	}
	return newRefMut(l.tail, "PeekBackMut"), true
}

// Front returns a copy of the front element.
func (l *List[T]) Front() (T, bool) {
	r, ok := l.PeekFront()
	if !ok {
		var zero T
		return zero, false
	}
	defer r.Release()
	return r.Get(), true
}

// Back returns a copy of the back element.
func (l *List[T]) Back() (T, bool) {
	r, ok := l.PeekBack()
	if !ok {
		var zero T
		return zero, false
	}
	defer r.Release()
	return r.Get(), true
}
