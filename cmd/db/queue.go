package db

import "skabillium/memolist/deque"

// Queue is a FIFO queue: items go in at the back and come out at the front.
type Queue struct {
	items deque.List[string]
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Len() int {
	return q.items.Len()
}

func (q *Queue) Enqueue(item string) {
	q.items.PushBack(item)
}

func (q *Queue) Dequeue() (string, bool) {
	return q.items.PopFront()
}

func (q *Queue) Peek() (string, bool) {
	return q.items.Front()
}

func (q *Queue) Clear() {
	q.items.Clear()
}
