// SPDX-License-Identifier: MIT

// Package display hands rasterized frames from the producer to whatever
// presents them.
package display

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"spectrogen/internal/fault"
)

// Picture is one frame slot. RGB is the packed output of the rasterizer and
// Image the converted frame a presenter draws. Both are allocated once.
type Picture struct {
	RGB   []byte
	Image *image.RGBA

	Seq       uint64    // set by CommitWrite, starts at 1
	Timestamp time.Time // set by CommitWrite
}

// FrameQueue is a fixed ring of Picture slots shared by one writer and one
// reader. The writer blocks in AcquireWriteSlot while every slot is
// occupied; the reader polls Len and never blocks.
//
// writeIndex is touched only by the writer and readIndex only by the
// reader. size is the one field both sides mutate.
type FrameQueue struct {
	slots      []Picture
	writeIndex int
	readIndex  int
	seq        uint64

	mu   sync.Mutex
	cond *sync.Cond
	size int

	quit atomic.Bool
}

// NewFrameQueue allocates capacity slots of width x height pixels.
func NewFrameQueue(capacity, width, height int) (*FrameQueue, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: frame queue capacity %d", fault.ErrInvalidArgument, capacity)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", fault.ErrInvalidArgument, width, height)
	}

	q := &FrameQueue{slots: make([]Picture, capacity)}
	q.cond = sync.NewCond(&q.mu)
	for i := range q.slots {
		q.slots[i].RGB = make([]byte, width*height*3)
		q.slots[i].Image = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	return q, nil
}

// Cap returns the number of slots.
func (q *FrameQueue) Cap() int { return len(q.slots) }

// Size returns the slot dimensions in pixels.
func (q *FrameQueue) Size() (width, height int) {
	b := q.slots[0].Image.Bounds()
	return b.Dx(), b.Dy()
}

// AcquireWriteSlot waits for a free slot and returns it. After Shutdown it
// returns fault.ErrCancelled instead, including to a writer already waiting.
func (q *FrameQueue) AcquireWriteSlot() (*Picture, error) {
	q.mu.Lock()
	for q.size >= len(q.slots) && !q.quit.Load() {
		q.cond.Wait()
	}
	q.mu.Unlock()

	if q.quit.Load() {
		return nil, fault.ErrCancelled
	}
	return &q.slots[q.writeIndex], nil
}

// CommitWrite publishes the slot returned by the last AcquireWriteSlot.
func (q *FrameQueue) CommitWrite() {
	q.seq++
	slot := &q.slots[q.writeIndex]
	slot.Seq = q.seq
	slot.Timestamp = time.Now()
	q.writeIndex = (q.writeIndex + 1) % len(q.slots)

	q.mu.Lock()
	q.size++
	q.mu.Unlock()
	q.cond.Signal()
}

// Len returns the number of frames ready to present.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Front returns the oldest ready frame, or nil when none is ready. The
// frame stays valid until Release.
func (q *FrameQueue) Front() *Picture {
	if q.Len() == 0 {
		return nil
	}
	return &q.slots[q.readIndex]
}

// Release frees the frame returned by Front and wakes a waiting writer.
func (q *FrameQueue) Release() {
	q.mu.Lock()
	if q.size == 0 {
		q.mu.Unlock()
		return
	}
	q.readIndex = (q.readIndex + 1) % len(q.slots)
	q.size--
	q.mu.Unlock()
	q.cond.Signal()
}

// Shutdown wakes every waiting writer with fault.ErrCancelled. It is safe
// to call more than once.
func (q *FrameQueue) Shutdown() {
	q.quit.Store(true)
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Closed reports whether Shutdown has been called.
func (q *FrameQueue) Closed() bool { return q.quit.Load() }
