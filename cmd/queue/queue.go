// Package queue implements a string queue on top of a singly linked list.
//
// A Queue is not safe for concurrent use. Callers that share one across
// goroutines get undefined results.
package queue

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Allocator accounts for the storage a Queue takes. Alloc reports false when
// the request cannot be served; the queue then fails the operation without
// mutating itself.
type Allocator interface {
	Alloc(size int) bool
	Free(size int)
}

type nopAllocator struct{}

func (nopAllocator) Alloc(int) bool { return true }
func (nopAllocator) Free(int)       {}

type qNode struct {
	value string
	next  *qNode
}

// Queue holds strings in insertion order. The zero value is an empty queue
// whose storage is not accounted; use New to account it with an Allocator.
type Queue struct {
	head  *qNode
	tail  *qNode
	size  int
	alloc Allocator
	freed bool
}

var (
	queueSize = int(unsafe.Sizeof(Queue{}))
	nodeSize  = int(unsafe.Sizeof(qNode{}))
)

// New creates an empty queue. It returns nil when alloc refuses the queue
// record. A nil alloc never fails.
func New(alloc Allocator) *Queue {
	if alloc == nil {
		alloc = nopAllocator{}
	}
	if !alloc.Alloc(queueSize) {
		return nil
	}

	return &Queue{alloc: alloc}
}

// Free releases every node and the queue record. Calling it on a nil or
// already freed queue does nothing.
func (q *Queue) Free() {
	if q == nil || q.freed {
		return
	}

	cur := q.head
	for cur != nil {
		node := cur
		cur = cur.next
		q.freeNode(node)
	}

	q.head, q.tail, q.size = nil, nil, 0
	q.allocator().Free(queueSize)
	q.freed = true
}

// InsertHead stores a copy of s at the front of the queue.
// It returns false if q is nil, s is empty, or storage could not be allocated.
func (q *Queue) InsertHead(s string) bool {
	if q == nil || q.freed {
		return false
	}

	node := q.newNode(s)
	if node == nil {
		return false
	}

	node.next = q.head
	q.head = node
	if q.tail == nil {
		q.tail = node
	}

	q.size++
	return true
}

// InsertTail stores a copy of s at the back of the queue.
// It returns false if q is nil, s is empty, or storage could not be allocated.
func (q *Queue) InsertTail(s string) bool {
	if q == nil || q.freed {
		return false
	}

	node := q.newNode(s)
	if node == nil {
		return false
	}

	if q.head == nil {
		q.head = node
	}
	if q.tail != nil {
		q.tail.next = node
	}

	q.tail = node
	q.size++
	return true
}

// RemoveHead detaches the front element. If buf is non-empty, up to
// len(buf)-1 bytes of the removed value are copied into it and the rest of
// buf is zeroed, so the last byte is always a terminator.
// It returns false if q is nil or empty.
func (q *Queue) RemoveHead(buf []byte) bool {
	if q == nil || q.head == nil {
		return false
	}

	head := q.head
	q.head = head.next
	if q.tail == head {
		q.tail = nil
	}

	if len(buf) > 0 {
		n := copy(buf[:len(buf)-1], head.value)
		clear(buf[n:])
	}

	q.freeNode(head)
	q.size--
	return true
}

// Size returns the number of elements, 0 for a nil queue.
func (q *Queue) Size() int {
	if q == nil {
		return 0
	}
	return q.size
}

// Reverse flips the order of the queue in place. No nodes are allocated or
// released.
func (q *Queue) Reverse() {
	if q == nil || q.head == nil {
		return
	}

	var prev, next *qNode
	cur := q.head
	q.tail = q.head

	for cur != nil {
		next = cur.next
		cur.next = prev
		prev = cur
		cur = next
	}

	q.head = prev
}

// Each calls fn for every value from head to tail until fn returns false.
func (q *Queue) Each(fn func(value string) bool) {
	if q == nil {
		return
	}

	for cur := q.head; cur != nil; cur = cur.next {
		if !fn(cur.value) {
			return
		}
	}
}

// Verify walks the list and reports the first broken structural invariant.
func (q *Queue) Verify() error {
	if q == nil {
		return nil
	}

	if q.size < 0 {
		return errors.Errorf("negative size %d", q.size)
	}
	if q.size == 0 {
		if q.head != nil || q.tail != nil {
			return errors.New("empty queue has dangling head or tail")
		}
		return nil
	}
	if q.head == nil || q.tail == nil {
		return errors.Errorf("queue of size %d is missing head or tail", q.size)
	}
	if q.tail.next != nil {
		return errors.New("tail has a successor")
	}

	n := 0
	var last *qNode
	for cur := q.head; cur != nil; cur = cur.next {
		n++
		if n > q.size {
			return errors.Errorf("more than %d nodes reachable from head, list may be cyclic", q.size)
		}
		if cur.value == "" {
			return errors.Errorf("empty value stored at position %d", n-1)
		}
		last = cur
	}

	if n != q.size {
		return errors.Errorf("size is %d but %d nodes are linked", q.size, n)
	}
	if last != q.tail {
		return errors.New("tail is not the last linked node")
	}

	return nil
}

func (q *Queue) allocator() Allocator {
	if q.alloc == nil {
		return nopAllocator{}
	}
	return q.alloc
}

// newNode allocates a node and its text. A partial allocation is rolled back.
func (q *Queue) newNode(s string) *qNode {
	if s == "" {
		return nil
	}

	alloc := q.allocator()
	if !alloc.Alloc(nodeSize) {
		return nil
	}
	if !alloc.Alloc(len(s) + 1) {
		alloc.Free(nodeSize)
		return nil
	}

	return &qNode{value: string(append([]byte(nil), s...))}
}

func (q *Queue) freeNode(node *qNode) {
	alloc := q.allocator()
	alloc.Free(len(node.value) + 1)
	alloc.Free(nodeSize)
	node.value = ""
	node.next = nil
}
