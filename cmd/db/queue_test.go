package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue()
	q.Enqueue("5")
	q.Enqueue("7")
	q.Enqueue("9")
	assert.Equal(t, 3, q.Len())

	v, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "5", v)
	v, _ = q.Dequeue()
	assert.Equal(t, "7", v)

	v, ok = q.Peek()
	require.True(t, ok)
	assert.Equal(t, "9", v)
	assert.Equal(t, 1, q.Len())

	v, _ = q.Dequeue()
	assert.Equal(t, "9", v)
	assert.Zero(t, q.Len())

	q.Enqueue("11")
	assert.Equal(t, 1, q.Len())
	v, _ = q.Dequeue()
	assert.Equal(t, "11", v)

	_, ok = q.Dequeue()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
	assert.Zero(t, q.Len())
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Enqueue("a")
	q.Enqueue("b")
	q.Clear()

	assert.Zero(t, q.Len())
	_, ok := q.Dequeue()
	assert.False(t, ok)
}
