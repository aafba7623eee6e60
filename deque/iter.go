package deque

import "iter"

// IntoIter is a consuming iterator. It owns the nodes it was created from
// and removes elements from either end as they are yielded.
type IntoIter[T any] struct {
	list List[T]
}

// IntoIter moves every element of l into a new consuming iterator. l is
// left empty and can be reused.
func (l *List[T]) IntoIter() *IntoIter[T] {
	it := &IntoIter[T]{list: *l}
	*l = List[T]{}
	return it
}

// Next removes and returns the front element.
func (it *IntoIter[T]) Next() (T, bool) {
	return it.list.PopFront()
}

// NextBack removes and returns the back element.
func (it *IntoIter[T]) NextBack() (T, bool) {
	return it.list.PopBack()
}

// Len returns the number of elements not yet yielded.
func (it *IntoIter[T]) Len() int {
	return it.list.Len()
}

// All drains the iterator front to back. Elements not reached because the
// loop stopped early stay in the iterator.
func (it *IntoIter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			elem, ok := it.Next()
			if !ok || !yield(elem) {
				return
			}
		}
	}
}

// Iter is a borrowing forward iterator. It holds a read-only view of the
// next node to visit, so the nodes ahead of it cannot be popped while it
// is open.
type Iter[T any] struct {
	cur *node[T]
}

// Iter returns a forward iterator over the elements of l, front to back.
// An iterator that is abandoned before it is exhausted keeps its view of
// the next unvisited node until Close is called; until then, popping that
// node or its neighbours panics.
func (l *List[T]) Iter() *Iter[T] {
	it := &Iter[T]{}
	if l.head != nil {
		l.head.borrow.acquireShared("Iter")
		it.cur = l.head
	}
	return it
}

// Next returns a read-only view of the next element. The borrow the
// iterator held on that node moves into the returned view, which the
// caller must release.
func (it *Iter[T]) Next() (*Ref[T], bool) {
	n := it.cur
	if n == nil {
		return nil, false
	}
	if n.next != nil {
		n.next.borrow.acquireShared("Iter.Next")
	}
	it.cur = n.next
	return &Ref[T]{n: n}, true
}

// Close releases the view held on the next unvisited node. The iterator
// yields nothing afterwards.
func (it *Iter[T]) Close() {
	if it.cur != nil {
		it.cur.borrow.releaseShared()
		it.cur = nil
	}
}

// All yields every element front to back. Each view is released before
// the next element is produced.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		it := l.Iter()
		defer it.Close()
		for {
			r, ok := it.Next()
			if !ok {
				return
			}
			elem := r.Get()
			r.Release()
			if !yield(elem) {
				return
			}
		}
	}
}
