// SPDX-License-Identifier: MIT

// Package window presents frames in a desktop window. The ebiten game loop
// is compiled out by the headless build tag; the pacing and status logic
// here is shared by both builds.
package window

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"spectrogen/internal/audio"
	"spectrogen/internal/display"
	"spectrogen/internal/spectrogram"
)

// Options configure a Window.
type Options struct {
	Title   string
	Width   int
	Height  int
	Refresh time.Duration // interval between presented frames
	Retry   time.Duration // wait when no frame was ready

	// Ring, when set, is paused and resumed with the space key.
	Ring *audio.SampleRing
	// Raster and SampleRate, when set, feed the peak readout.
	Raster     *spectrogram.Rasterizer
	SampleRate float64
	// Analysis describes the window function in the overlay, e.g. "gauss 1536".
	Analysis string
}

// Window shows the frames of a FrameQueue and forwards each one to sinks.
type Window struct {
	queue *display.FrameQueue
	sinks []display.Sink
	opts  Options

	next      time.Time // earliest time the next frame may be shown
	presented atomic.Uint64
	overlay   bool
}

// New returns a window over queue. Non-positive intervals take the display
// defaults.
func New(queue *display.FrameQueue, opts Options, sinks ...display.Sink) *Window {
	if opts.Refresh <= 0 {
		opts.Refresh = display.DefaultRefreshInterval
	}
	if opts.Retry <= 0 {
		opts.Retry = display.DefaultRetryInterval
	}
	if opts.Title == "" {
		opts.Title = "Spectrogen"
	}
	return &Window{queue: queue, sinks: sinks, opts: opts, overlay: true}
}

// Presented returns the number of frames shown so far.
func (w *Window) Presented() uint64 { return w.presented.Load() }

// tick shows the ready frame through upload when one is due and ready. It
// reports whether a frame was shown.
func (w *Window) tick(now time.Time, upload func(pix []byte)) bool {
	if now.Before(w.next) {
		return false
	}
	p := w.queue.Front()
	if p == nil {
		w.next = now.Add(w.opts.Retry)
		return false
	}

	upload(p.Image.Pix)
	display.Forward(p, w.sinks)
	w.queue.Release()
	w.presented.Add(1)
	w.next = now.Add(w.opts.Refresh)
	return true
}

// togglePause pauses or resumes capture. It returns the new state.
func (w *Window) togglePause() bool {
	if w.opts.Ring == nil {
		return false
	}
	return w.opts.Ring.TogglePaused()
}

// status is the overlay text.
func (w *Window) status() string {
	parts := make([]string, 0, 4)
	if w.opts.Analysis != "" {
		parts = append(parts, w.opts.Analysis)
	}
	if w.opts.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.0f Hz", w.opts.SampleRate))
		if w.opts.Raster != nil && w.opts.Raster.Frames() > 0 {
			bin, _ := w.opts.Raster.Peak()
			peak := w.opts.Raster.Engine().BinFrequency(bin, w.opts.SampleRate)
			parts = append(parts, fmt.Sprintf("peak %.0f Hz", peak))
		}
	}
	if w.opts.Ring != nil && w.opts.Ring.Paused() {
		parts = append(parts, "PAUSED")
	}
	return strings.Join(parts, "  ")
}
