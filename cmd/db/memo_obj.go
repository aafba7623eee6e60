package db

import "skabillium/memolist/deque"

type MemoObjType = byte

const (
	ObjList MemoObjType = iota
	ObjQueue
)

// TypeName is the name TYPE reports for a kind of object.
func TypeName(kind MemoObjType) string {
	switch kind {
	case ObjList:
		return "list"
	case ObjQueue:
		return "queue"
	}
	return "none"
}

type MemoObj struct {
	Kind  MemoObjType
	List  *deque.List[string]
	Queue *Queue
}

func newListObj() *MemoObj {
	return &MemoObj{Kind: ObjList, List: deque.New[string]()}
}

func newQueueObj() *MemoObj {
	return &MemoObj{Kind: ObjQueue, Queue: NewQueue()}
}

func (obj *MemoObj) asList() (*deque.List[string], bool) {
	return obj.List, obj.Kind == ObjList
}

func (obj *MemoObj) asQueue() (*Queue, bool) {
	return obj.Queue, obj.Kind == ObjQueue
}

func (obj *MemoObj) len() int {
	switch obj.Kind {
	case ObjList:
		return obj.List.Len()
	case ObjQueue:
		return obj.Queue.Len()
	}
	return 0
}

// release tears the object's elements down one by one.
func (obj *MemoObj) release() {
	switch obj.Kind {
	case ObjList:
		obj.List.Clear()
	case ObjQueue:
		obj.Queue.Clear()
	}
}
