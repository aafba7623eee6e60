package db

import (
	"path"
	"slices"
	"sync"

	"github.com/juju/errors"
	"github.com/samber/lo"

	"skabillium/memolist/deque"
)

const (
	ErrWrongType       = errors.ConstError("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNoSuchKey       = errors.ConstError("ERR no such key")
	ErrIndexOutOfRange = errors.ConstError("ERR index out of range")
	ErrNotAnEnd        = errors.ConstError("ERR only the first and the last element of a list can be set")
	ErrBadPattern      = errors.ConstError("ERR invalid pattern")
)

// Database is the keyspace. It is safe for concurrent use. Even reads take
// the exclusive lock: peeking and iterating a list update its borrow state.
type Database struct {
	mu      sync.Mutex
	objects map[string]*MemoObj
}

func NewDatabase() *Database {
	return &Database{objects: make(map[string]*MemoObj)}
}

func (d *Database) FlushAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, obj := range d.objects {
		obj.release()
	}
	d.objects = make(map[string]*MemoObj)
}

// Keys returns the sorted keys matching a glob pattern.
func (d *Database) Keys(pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, ErrBadPattern
	}

	d.mu.Lock()
	keys := lo.Filter(lo.Keys(d.objects), func(key string, _ int) bool {
		ok, _ := path.Match(pattern, key)
		return ok
	})
	d.mu.Unlock()

	slices.Sort(keys)
	return keys, nil
}

func (d *Database) DbSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

func (d *Database) Exists(keys ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, key := range keys {
		if _, found := d.objects[key]; found {
			n++
		}
	}
	return n
}

// Type returns the kind name of the object at key, or "none".
func (d *Database) Type(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	obj, found := d.objects[key]
	if !found {
		return "none"
	}
	return TypeName(obj.Kind)
}

// Del removes the given keys and returns how many existed.
func (d *Database) Del(keys ...string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	deleted := 0
	for _, key := range keys {
		if obj, found := d.objects[key]; found {
			obj.release()
			delete(d.objects, key)
			deleted++
		}
	}
	return deleted
}

// list returns the list at key, creating it when create is set. A nil
// list and no error means the key does not exist.
func (d *Database) list(key string, create bool) (*deque.List[string], error) {
	obj, found := d.objects[key]
	if !found {
		if !create {
			return nil, nil
		}
		obj = newListObj()
		d.objects[key] = obj
	}

	list, ok := obj.asList()
	if !ok {
		return nil, ErrWrongType
	}
	return list, nil
}

func (d *Database) queue(key string, create bool) (*Queue, error) {
	obj, found := d.objects[key]
	if !found {
		if !create {
			return nil, nil
		}
		obj = newQueueObj()
		d.objects[key] = obj
	}

	q, ok := obj.asQueue()
	if !ok {
		return nil, ErrWrongType
	}
	return q, nil
}

// dropIfEmpty removes a key whose object has no elements left.
func (d *Database) dropIfEmpty(key string) {
	if obj, found := d.objects[key]; found && obj.len() == 0 {
		delete(d.objects, key)
	}
}

// LPush prepends values one after the other and returns the new length.
func (d *Database) LPush(key string, values ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, true)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		list.PushFront(v)
	}
	return list.Len(), nil
}

// RPush appends values and returns the new length.
func (d *Database) RPush(key string, values ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, true)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		list.PushBack(v)
	}
	return list.Len(), nil
}

func (d *Database) LPop(key string) (string, bool, error) {
	values, err := d.pop(key, 1, (*deque.List[string]).PopFront)
	if err != nil || len(values) == 0 {
		return "", false, err
	}
	return values[0], true, nil
}

func (d *Database) RPop(key string) (string, bool, error) {
	values, err := d.pop(key, 1, (*deque.List[string]).PopBack)
	if err != nil || len(values) == 0 {
		return "", false, err
	}
	return values[0], true, nil
}

// LPopN pops up to count elements from the front. A nil slice means the
// key does not exist.
func (d *Database) LPopN(key string, count int) ([]string, error) {
	return d.pop(key, count, (*deque.List[string]).PopFront)
}

// RPopN pops up to count elements from the back.
func (d *Database) RPopN(key string, count int) ([]string, error) {
	return d.pop(key, count, (*deque.List[string]).PopBack)
}

func (d *Database) pop(key string, count int, popFn func(*deque.List[string]) (string, bool)) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, false)
	if err != nil || list == nil {
		return nil, err
	}

	out := make([]string, 0, min(count, list.Len()))
	for len(out) < count {
		v, ok := popFn(list)
		if !ok {
			break
		}
		out = append(out, v)
	}
	d.dropIfEmpty(key)
	return out, nil
}

func (d *Database) LLen(key string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, false)
	if err != nil || list == nil {
		return 0, err
	}
	return list.Len(), nil
}

// LFront returns the first element without removing it.
func (d *Database) LFront(key string) (string, bool, error) {
	return d.peek(key, (*deque.List[string]).PeekFront)
}

// LBack returns the last element without removing it.
func (d *Database) LBack(key string) (string, bool, error) {
	return d.peek(key, (*deque.List[string]).PeekBack)
}

func (d *Database) peek(key string, peekFn func(*deque.List[string]) (*deque.Ref[string], bool)) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, false)
	if err != nil || list == nil {
		return "", false, err
	}
	ref, ok := peekFn(list)
	if !ok {
		return "", false, nil
	}
	defer ref.Release()
	return ref.Get(), true, nil
}

// LSet replaces the element at index, which must address one of the two
// ends of the list. Negative indexes count from the back.
func (d *Database) LSet(key string, index int, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, false)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrNoSuchKey
	}

	n := list.Len()
	if index < 0 {
		index += n
	}

	var ref *deque.RefMut[string]
	switch {
	case index < 0 || index >= n:
		return ErrIndexOutOfRange
	case index == 0:
		ref, _ = list.PeekFrontMut()
	case index == n-1:
		ref, _ = list.PeekBackMut()
	default:
		return ErrNotAnEnd
	}
	ref.Set(value)
	ref.Release()
	return nil
}

// LRange returns the elements between start and stop, both inclusive.
// Negative offsets count from the back.
func (d *Database) LRange(key string, start, stop int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.list(key, false)
	if err != nil || list == nil {
		return []string{}, err
	}

	n := list.Len()
	if start < 0 {
		start = max(start+n, 0)
	}
	if stop < 0 {
		stop += n
	}
	stop = min(stop, n-1)
	if start > stop {
		return []string{}, nil
	}

	out := make([]string, 0, stop-start+1)
	it := list.Iter()
	defer it.Close()
	for i := 0; i <= stop; i++ {
		ref, ok := it.Next()
		if !ok {
			break
		}
		if i >= start {
			out = append(out, ref.Get())
		}
		ref.Release()
	}
	return out, nil
}

// QAdd enqueues values and returns the new queue length.
func (d *Database) QAdd(key string, values ...string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, err := d.queue(key, true)
	if err != nil {
		return 0, err
	}
	for _, v := range values {
		q.Enqueue(v)
	}
	return q.Len(), nil
}

func (d *Database) QPop(key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, err := d.queue(key, false)
	if err != nil || q == nil {
		return "", false, err
	}
	v, ok := q.Dequeue()
	d.dropIfEmpty(key)
	return v, ok, nil
}

func (d *Database) QLen(key string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, err := d.queue(key, false)
	if err != nil || q == nil {
		return 0, err
	}
	return q.Len(), nil
}

func (d *Database) QPeek(key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	q, err := d.queue(key, false)
	if err != nil || q == nil {
		return "", false, err
	}
	v, ok := q.Peek()
	return v, ok, nil
}
