// SPDX-License-Identifier: MIT

// Package queue provides a thread-safe FIFO of owned byte buffers.
package queue

import (
	"errors"
	"sync"

	"spectrogen/internal/fault"
)

// ErrEmpty is returned by a non-blocking Dequeue on an empty queue.
var ErrEmpty = errors.New("queue empty")

type node struct {
	data []byte
	next *node
}

// ArrayQueue is a singly linked FIFO of byte slices. Enqueue moves
// ownership of a slice into the queue and Dequeue moves it out; callers
// must not touch a slice after enqueueing it.
type ArrayQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	head      *node
	tail      *node
	count     int
	size      int
	cancelled bool
}

// New returns an empty queue.
func New() *ArrayQueue {
	q := &ArrayQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends data and wakes one blocked Dequeue.
func (q *ArrayQueue) Enqueue(data []byte) {
	n := &node{data: data}
	q.mu.Lock()
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.count++
	q.size += len(data)
	q.mu.Unlock()
	q.cond.Signal()
}

// Dequeue removes and returns the oldest slice. Without block it returns
// ErrEmpty on an empty queue; with block it waits for an Enqueue. Either
// way it returns fault.ErrCancelled once Cancel has been called, even if
// items remain.
func (q *ArrayQueue) Dequeue(block bool) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.cancelled {
			return nil, fault.ErrCancelled
		}
		if q.head != nil {
			break
		}
		if !block {
			return nil, ErrEmpty
		}
		q.cond.Wait()
	}

	n := q.head
	q.head = n.next
	if q.head == nil {
		q.tail = nil
	}
	q.count--
	q.size -= len(n.data)
	return n.data, nil
}

// Cancel makes every current and future Dequeue return fault.ErrCancelled.
func (q *ArrayQueue) Cancel() {
	q.mu.Lock()
	q.cancelled = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Cancelled reports whether Cancel has been called.
func (q *ArrayQueue) Cancelled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancelled
}

// Len returns the number of queued slices.
func (q *ArrayQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Size returns the total length in bytes of the queued slices.
func (q *ArrayQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Drain removes every queued slice and returns how many were dropped.
func (q *ArrayQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.count
	q.head, q.tail = nil, nil
	q.count, q.size = 0, 0
	return n
}
