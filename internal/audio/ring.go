// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"sync/atomic"
)

// SampleRing holds the most recent N samples of the capture stream. The
// capture callback writes and the producer snapshots; both hold the lock.
type SampleRing struct {
	mu      sync.Mutex
	samples []float64
	head    int // index of the oldest sample
	paused  atomic.Bool
}

// NewSampleRing returns a ring of n zero samples. n must be positive.
func NewSampleRing(n int) *SampleRing {
	return &SampleRing{samples: make([]float64, n)}
}

// Len returns the ring capacity.
func (r *SampleRing) Len() int { return len(r.samples) }

// Write appends chunk, overwriting the oldest samples. A chunk at least as
// long as the ring replaces its whole content with the chunk's tail.
// Writes are dropped while the ring is paused.
func (r *SampleRing) Write(chunk []float32) {
	if r.paused.Load() {
		return
	}
	n := len(r.samples)

	r.mu.Lock()
	if len(chunk) >= n {
		for i, v := range chunk[len(chunk)-n:] {
			r.samples[i] = float64(v)
		}
		r.head = 0
	} else {
		for _, v := range chunk {
			r.samples[r.head] = float64(v)
			r.head++
			if r.head == n {
				r.head = 0
			}
		}
	}
	r.mu.Unlock()
}

// Snapshot copies the ring into dst, oldest sample first, and returns the
// number of samples copied. If dst is shorter than the ring it receives
// the newest len(dst) samples.
func (r *SampleRing) Snapshot(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.samples)
	skip := 0
	if len(dst) < n {
		skip = n - len(dst)
	}
	start := (r.head + skip) % n
	c := copy(dst, r.samples[start:])
	if c < n-skip {
		c += copy(dst[c:], r.samples[:r.head])
	}
	return c
}

// SetPaused suspends or resumes writes without closing the stream.
func (r *SampleRing) SetPaused(paused bool) { r.paused.Store(paused) }

// TogglePaused flips the pause state and returns the new one.
func (r *SampleRing) TogglePaused() bool {
	for {
		old := r.paused.Load()
		if r.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Paused reports whether writes are suspended.
func (r *SampleRing) Paused() bool { return r.paused.Load() }
