// SPDX-License-Identifier: MIT

// Package pipeline connects sample sources to the frame queue: a producer
// goroutine for live capture and a one-shot render for static samples.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"spectrogen/internal/audio"
	"spectrogen/internal/display"
	"spectrogen/internal/fault"
	applog "spectrogen/internal/log"
	"spectrogen/internal/spectrogram"
)

// Producer renders the sample ring into frame queue slots until the queue
// is shut down. It is the queue's only writer.
type Producer struct {
	queue   *display.FrameQueue
	ring    *audio.SampleRing
	raster  *spectrogram.Rasterizer
	samples []float64 // snapshot buffer, ring-sized

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
	err     error

	frames atomic.Uint64
}

// NewProducer checks that the ring holds enough samples for one window and
// that the queue slots match the rasterizer size.
func NewProducer(queue *display.FrameQueue, ring *audio.SampleRing, raster *spectrogram.Rasterizer) (*Producer, error) {
	if queue == nil || ring == nil || raster == nil {
		return nil, fmt.Errorf("%w: producer needs a queue, a ring and a rasterizer", fault.ErrInvalidArgument)
	}
	if ring.Len() < raster.MinSamples() {
		return nil, fmt.Errorf("%w: ring of %d samples is shorter than the window (%d)",
			fault.ErrInvalidArgument, ring.Len(), raster.MinSamples())
	}
	qw, qh := queue.Size()
	if rw, rh := raster.Size(); qw != rw || qh != rh {
		return nil, fmt.Errorf("%w: queue slots are %dx%d, rasterizer draws %dx%d",
			fault.ErrInvalidArgument, qw, qh, rw, rh)
	}
	return &Producer{
		queue:   queue,
		ring:    ring,
		raster:  raster,
		samples: make([]float64, ring.Len()),
	}, nil
}

// Start launches the producer goroutine. Calling Start on a running
// producer does nothing.
func (p *Producer) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		applog.Warnf("pipeline: Start called but producer already running")
		return
	}
	p.running = true
	p.err = nil
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("pipeline: producer started (%d samples per frame)", len(p.samples))
		err := p.run()

		p.mu.Lock()
		p.err = err
		p.running = false
		p.mu.Unlock()

		if err != nil {
			applog.Errorf("pipeline: producer stopped: %v", err)
			// Nothing more will arrive; let the presenter finish too.
			p.queue.Shutdown()
			return
		}
		applog.Infof("pipeline: producer stopped after %d frames", p.frames.Load())
	}()
}

// Stop shuts the queue down and waits for the producer goroutine to exit.
// It returns the error that ended the loop, if any.
func (p *Producer) Stop() error {
	p.queue.Shutdown()
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Frames returns the number of frames committed so far.
func (p *Producer) Frames() uint64 { return p.frames.Load() }

func (p *Producer) run() error {
	for {
		pic, err := p.queue.AcquireWriteSlot()
		if errors.Is(err, fault.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		p.ring.Snapshot(p.samples)
		if err := renderInto(pic, p.raster, p.samples, true); err != nil {
			return err
		}
		p.queue.CommitWrite()
		p.frames.Add(1)
	}
}

// RenderStatic renders samples uncropped into a single frame and commits
// it. The queue must have a free slot or RenderStatic blocks until one is
// released.
func RenderStatic(queue *display.FrameQueue, raster *spectrogram.Rasterizer, samples []float64) error {
	pic, err := queue.AcquireWriteSlot()
	if err != nil {
		return err
	}

	start := time.Now()
	if err := renderInto(pic, raster, samples, false); err != nil {
		return err
	}
	queue.CommitWrite()

	applog.Infof("pipeline: rendered %d samples in %v", len(samples), time.Since(start))
	return nil
}

func renderInto(pic *display.Picture, raster *spectrogram.Rasterizer, samples []float64, crop bool) error {
	if err := raster.Render(pic.RGB, samples, crop); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return display.RGBToRGBA(pic.Image, pic.RGB)
}
