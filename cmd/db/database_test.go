package db

import (
	"fmt"
	"sync"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPushPop(t *testing.T) {
	d := NewDatabase()

	n, err := d.RPush("list", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = d.LPush("list", "a", "z")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	all, err := d.LRange("list", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "b", "c"}, all)

	v, found, err := d.LPop("list")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "z", v)

	v, found, err = d.RPop("list")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "c", v)

	n, err = d.LLen("list")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	values, err := d.RPopN("list", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, values)

	// Popping the last element removes the key.
	assert.Zero(t, d.DbSize())
	_, found, err = d.LPop("list")
	require.NoError(t, err)
	assert.False(t, found)
	values, err = d.LPopN("list", 2)
	require.NoError(t, err)
	assert.Nil(t, values)
}

func TestListPeek(t *testing.T) {
	d := NewDatabase()
	_, found, err := d.LFront("list")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = d.RPush("list", "1", "2", "3")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		v, found, err := d.LFront("list")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "1", v)

		v, _, err = d.LBack("list")
		require.NoError(t, err)
		assert.Equal(t, "3", v)
	}
	n, _ := d.LLen("list")
	assert.Equal(t, 3, n)
}

func TestLSet(t *testing.T) {
	d := NewDatabase()
	assert.True(t, errors.Is(d.LSet("list", 0, "x"), ErrNoSuchKey))

	_, err := d.RPush("list", "1", "2", "3")
	require.NoError(t, err)

	require.NoError(t, d.LSet("list", 0, "first"))
	require.NoError(t, d.LSet("list", -1, "last"))
	assert.True(t, errors.Is(d.LSet("list", 1, "x"), ErrNotAnEnd))
	assert.True(t, errors.Is(d.LSet("list", 3, "x"), ErrIndexOutOfRange))
	assert.True(t, errors.Is(d.LSet("list", -4, "x"), ErrIndexOutOfRange))

	v, _, err := d.LPop("list")
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	require.NoError(t, d.LSet("list", 1, "new last"))

	all, _ := d.LRange("list", 0, -1)
	assert.Equal(t, []string{"2", "new last"}, all)
}

func TestLRange(t *testing.T) {
	d := NewDatabase()
	all, err := d.LRange("missing", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = d.RPush("list", "a", "b", "c", "d", "e")
	require.NoError(t, err)

	for _, tc := range []struct {
		start, stop int
		want        []string
	}{
		{0, -1, []string{"a", "b", "c", "d", "e"}},
		{1, 2, []string{"b", "c"}},
		{-2, -1, []string{"d", "e"}},
		{-100, 1, []string{"a", "b"}},
		{3, 100, []string{"d", "e"}},
		{3, 1, []string{}},
		{5, 10, []string{}},
		{0, -6, []string{}},
	} {
		got, err := d.LRange("list", tc.start, tc.stop)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "LRange(%d, %d)", tc.start, tc.stop)
	}

	// Ranges only borrow; the list can still be popped afterwards.
	v, _, err := d.LPop("list")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestQueueCommands(t *testing.T) {
	d := NewDatabase()
	n, err := d.QAdd("queue", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, found, err := d.QPeek("queue")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", v)

	v, _, _ = d.QPop("queue")
	assert.Equal(t, "1", v)
	n, _ = d.QLen("queue")
	assert.Equal(t, 1, n)

	v, _, _ = d.QPop("queue")
	assert.Equal(t, "2", v)
	assert.Equal(t, "none", d.Type("queue"))

	_, found, err = d.QPop("queue")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestWrongType(t *testing.T) {
	d := NewDatabase()
	_, err := d.RPush("list", "a")
	require.NoError(t, err)
	_, err = d.QAdd("queue", "a")
	require.NoError(t, err)

	_, err = d.QAdd("list", "b")
	assert.True(t, errors.Is(err, ErrWrongType))
	_, _, err = d.QPop("list")
	assert.True(t, errors.Is(err, ErrWrongType))
	_, err = d.LPush("queue", "b")
	assert.True(t, errors.Is(err, ErrWrongType))
	_, err = d.LRange("queue", 0, -1)
	assert.True(t, errors.Is(err, ErrWrongType))
	_, _, err = d.LFront("queue")
	assert.True(t, errors.Is(err, ErrWrongType))
	assert.True(t, errors.Is(d.LSet("queue", 0, "x"), ErrWrongType))

	assert.Equal(t, "list", d.Type("list"))
	assert.Equal(t, "queue", d.Type("queue"))
}

func TestKeys(t *testing.T) {
	d := NewDatabase()
	for _, key := range []string{"user:1", "user:2", "job", "user:10"} {
		_, err := d.RPush(key, "x")
		require.NoError(t, err)
	}

	keys, err := d.Keys("*")
	require.NoError(t, err)
	assert.Equal(t, []string{"job", "user:1", "user:10", "user:2"}, keys)

	keys, err = d.Keys("user:?")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:1", "user:2"}, keys)

	_, err = d.Keys("[")
	assert.True(t, errors.Is(err, ErrBadPattern))

	assert.Equal(t, 2, d.Exists("job", "user:1", "nope"))
	assert.Equal(t, 4, d.DbSize())
}

func TestDelAndFlush(t *testing.T) {
	d := NewDatabase()
	_, _ = d.RPush("a", "1", "2")
	_, _ = d.QAdd("b", "1")
	_, _ = d.RPush("c", "1")

	assert.Equal(t, 2, d.Del("a", "b", "missing"))
	assert.Equal(t, 1, d.DbSize())

	d.FlushAll()
	assert.Zero(t, d.DbSize())
	n, err := d.LLen("c")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentAccess(t *testing.T) {
	d := NewDatabase()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = d.RPush("list", fmt.Sprint(i, j))
				_, _, _ = d.LFront("list")
				_, _ = d.LRange("list", 0, 5)
			}
		}(i)
	}
	wg.Wait()

	n, err := d.LLen("list")
	require.NoError(t, err)
	assert.Equal(t, 800, n)
}
