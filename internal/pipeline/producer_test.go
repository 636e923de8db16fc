// SPDX-License-Identifier: MIT
package pipeline

import (
	"errors"
	"testing"
	"time"

	"spectrogen/internal/audio"
	"spectrogen/internal/display"
	"spectrogen/internal/fault"
	"spectrogen/internal/fourier"
	"spectrogen/internal/gradient"
	"spectrogen/internal/samples"
	"spectrogen/internal/spectrogram"
)

const (
	testWindow = 64
	testWidth  = 16
	testHeight = 8
	testRate   = 8000
)

func newRasterizer(t testing.TB) *spectrogram.Rasterizer {
	t.Helper()
	eng, err := fourier.NewEngine(testWindow, fourier.Gaussian, 6, fourier.BackendGonum)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	stops, err := gradient.Preset("phosphor")
	if err != nil {
		t.Fatal(err)
	}
	grad, err := gradient.FromStops(stops, gradient.Linear, gradient.Nearest)
	if err != nil {
		t.Fatal(err)
	}

	r, err := spectrogram.NewRasterizer(eng, grad, testWidth, testHeight)
	if err != nil {
		t.Fatalf("NewRasterizer() error = %v", err)
	}
	return r
}

func newQueue(t testing.TB, capacity int) *display.FrameQueue {
	t.Helper()
	q, err := display.NewFrameQueue(capacity, testWidth, testHeight)
	if err != nil {
		t.Fatalf("NewFrameQueue() error = %v", err)
	}
	return q
}

func TestNewProducerValidation(t *testing.T) {
	r := newRasterizer(t)
	q := newQueue(t, 1)

	if _, err := NewProducer(q, audio.NewSampleRing(testWindow-1), r); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("short ring: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewProducer(nil, audio.NewSampleRing(testWindow), r); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("nil queue: error = %v, want ErrInvalidArgument", err)
	}
	wide, err := display.NewFrameQueue(1, testWidth+1, testHeight)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewProducer(wide, audio.NewSampleRing(testWindow), r); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("mismatched slot size: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := NewProducer(q, audio.NewSampleRing(testWindow), r); err != nil {
		t.Errorf("NewProducer() error = %v", err)
	}
}

func TestProducerFillsQueue(t *testing.T) {
	r := newRasterizer(t)
	q := newQueue(t, 2)
	ring := audio.NewSampleRing(testWindow * 4)

	tone := make([]float64, ring.Len())
	samples.Sine(tone, testRate, 1000, 0.8)
	chunk := make([]float32, len(tone))
	for i, v := range tone {
		chunk[i] = float32(v)
	}
	ring.Write(chunk)

	p, err := NewProducer(q, ring, r)
	if err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Start() // no-op while running

	deadline := time.Now().Add(2 * time.Second)
	for q.Len() < q.Cap() {
		if time.Now().After(deadline) {
			t.Fatalf("queue has %d frames, want %d", q.Len(), q.Cap())
		}
		time.Sleep(time.Millisecond)
	}

	// Drain a few frames so the producer cycles through the slots.
	var lastSeq uint64
	for range 5 {
		for q.Len() == 0 {
			time.Sleep(time.Millisecond)
		}
		pic := q.Front()
		if pic.Seq <= lastSeq {
			t.Errorf("Seq = %d after %d", pic.Seq, lastSeq)
		}
		lastSeq = pic.Seq
		if pic.Image.Pix[3] != 0xff {
			t.Error("frame not converted to RGBA")
		}
		q.Release()
	}

	if err := p.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if p.Frames() < 5 {
		t.Errorf("Frames() = %d, want at least 5", p.Frames())
	}
	if !q.Closed() {
		t.Error("Stop should shut the queue down")
	}
}

func TestProducerStopWhileBlocked(t *testing.T) {
	q := newQueue(t, 1)
	p, err := NewProducer(q, audio.NewSampleRing(testWindow*2), newRasterizer(t))
	if err != nil {
		t.Fatal(err)
	}
	p.Start()

	for q.Len() == 0 {
		time.Sleep(time.Millisecond)
	}
	// The producer is now waiting for a free slot.
	done := make(chan error, 1)
	go func() { done <- p.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not wake the blocked producer")
	}
}

func TestStopBeforeStart(t *testing.T) {
	p, err := NewProducer(newQueue(t, 1), audio.NewSampleRing(testWindow), newRasterizer(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRenderStatic(t *testing.T) {
	r := newRasterizer(t)
	q := newQueue(t, 1)

	signal := samples.TestSignal(testWindow*8, testRate)
	if err := RenderStatic(q, r, signal); err != nil {
		t.Fatalf("RenderStatic() error = %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	pic := q.Front()
	if pic.Seq != 1 {
		t.Errorf("Seq = %d, want 1", pic.Seq)
	}

	lit := false
	for i := 0; i < len(pic.RGB); i++ {
		if pic.RGB[i] != 0 {
			lit = true
			break
		}
	}
	if !lit {
		t.Error("static render produced a black frame")
	}
}

func TestRenderStaticErrors(t *testing.T) {
	r := newRasterizer(t)

	q := newQueue(t, 1)
	if err := RenderStatic(q, r, make([]float64, testWindow-1)); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("short input: error = %v, want ErrInvalidArgument", err)
	}
	if q.Len() != 0 {
		t.Error("rejected render must not commit a frame")
	}

	q.Shutdown()
	if err := RenderStatic(q, r, make([]float64, testWindow)); !errors.Is(err, fault.ErrCancelled) {
		t.Errorf("shut down queue: error = %v, want ErrCancelled", err)
	}
}
