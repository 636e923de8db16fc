// SPDX-License-Identifier: MIT
package display

import (
	"context"
	"sync/atomic"
	"time"

	applog "spectrogen/internal/log"
)

// Default presentation timing.
const (
	DefaultRefreshInterval = 40 * time.Millisecond
	DefaultRetryInterval   = time.Millisecond
)

// Sink receives every presented frame. The Picture is only valid for the
// duration of the call.
type Sink interface {
	Present(p *Picture) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(p *Picture) error

// Present calls f(p).
func (f SinkFunc) Present(p *Picture) error { return f(p) }

// Headless presents frames on a timer without a window. Each tick forwards
// the ready frame to the sinks and frees its slot; when no frame is ready
// the tick is retried shortly instead of waiting a full refresh interval.
type Headless struct {
	queue   *FrameQueue
	sinks   []Sink
	refresh time.Duration
	retry   time.Duration

	presented atomic.Uint64
}

// NewHeadless returns a presenter over queue. Non-positive intervals take
// the defaults.
func NewHeadless(queue *FrameQueue, refresh, retry time.Duration, sinks ...Sink) *Headless {
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	return &Headless{queue: queue, sinks: sinks, refresh: refresh, retry: retry}
}

// Run presents frames until ctx is done or the queue is shut down.
func (h *Headless) Run(ctx context.Context) error {
	applog.Infof("display: headless presenter running (refresh %v, retry %v, %d sinks)",
		h.refresh, h.retry, len(h.sinks))

	timer := time.NewTimer(h.refresh)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			applog.Debugf("display: headless presenter stopped after %d frames", h.presented.Load())
			return nil
		case <-timer.C:
		}
		if h.queue.Closed() {
			return nil
		}
		if h.Tick() {
			timer.Reset(h.refresh)
		} else {
			timer.Reset(h.retry)
		}
	}
}

// Tick presents the ready frame, if any, and reports whether one was ready.
func (h *Headless) Tick() bool {
	p := h.queue.Front()
	if p == nil {
		return false
	}
	Forward(p, h.sinks)
	h.queue.Release()
	h.presented.Add(1)
	return true
}

// Presented returns the number of frames presented so far.
func (h *Headless) Presented() uint64 { return h.presented.Load() }

// Forward hands p to every sink, logging sink errors.
func Forward(p *Picture, sinks []Sink) {
	for _, s := range sinks {
		if err := s.Present(p); err != nil {
			applog.Warnf("display: sink failed on frame %d: %v", p.Seq, err)
		}
	}
}
