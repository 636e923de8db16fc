// SPDX-License-Identifier: MIT

// Package fourier implements the analysis windows and the short-time Fourier
// transform engine used to rasterize spectrograms.
package fourier

import (
	"fmt"

	"spectrogen/internal/fault"
	applog "spectrogen/internal/log"
	"spectrogen/pkg/bitint"
)

// MaxWindowWidth bounds the transform size an Engine will plan for.
const MaxWindowWidth = 1 << 22

// Engine owns a transform plan bound to a real input buffer and a half
// spectrum output. Window, Buffer and Spectrum are allocated once by
// NewEngine and never resized; a different width needs a new Engine.
//
// An Engine is not safe for concurrent use. The rasterizer reuses one Engine
// for every column of a frame.
type Engine struct {
	Width  int // samples per analysis window
	Radius int // Width / 2

	Window   []float64    // analysis window, sums to 1
	Buffer   []float64    // transform input, len Width
	Spectrum []complex128 // transform output, len Radius+1

	backend Backend
	kind    Kind
}

// NewEngine plans a transform of the given width and fills its window.
// A non-positive width is an ErrInvalidArgument; a width above
// MaxWindowWidth is an ErrResourceExhausted.
func NewEngine(width int, kind Kind, variance float64, backend BackendKind) (*Engine, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: window width must be positive, got %d", fault.ErrInvalidArgument, width)
	}
	if width > MaxWindowWidth {
		return nil, fmt.Errorf("%w: window width %d exceeds %d", fault.ErrResourceExhausted, width, MaxWindowWidth)
	}

	plan, err := newBackend(backend, width)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Width:    width,
		Radius:   width / 2,
		Window:   make([]float64, width),
		Buffer:   make([]float64, width),
		Spectrum: make([]complex128, width/2+1),
		backend:  plan,
		kind:     kind,
	}
	if err := Fill(kind, e.Window, variance); err != nil {
		return nil, err
	}

	applog.Debugf("fourier: planned %s transform (width %d, window %s, variance %.2f)",
		backend, width, kind, variance)
	if !bitint.IsPowerOfTwo(width) {
		applog.Debugf("fourier: width %d is not a power of 2, %d would use the radix-2 path",
			width, bitint.NextPowerOfTwo(width))
	}
	return e, nil
}

// Transform windows Buffer in place and executes the plan. Afterwards
// Spectrum[k] holds the complex amplitude of bin k for k in [0, Radius].
func (e *Engine) Transform() {
	Convolve(e.Buffer, e.Window)
	e.backend.Coefficients(e.Spectrum, e.Buffer)
}

// Kind returns the window kind the engine was built with.
func (e *Engine) Kind() Kind {
	return e.kind
}

// BinFrequency returns the centre frequency in Hz of spectrum bin k.
func (e *Engine) BinFrequency(k int, sampleRate float64) float64 {
	if k < 0 || k > e.Radius {
		return 0
	}
	return float64(k) * sampleRate / float64(e.Width)
}

// Close releases the buffers and the plan. It is safe to call on a nil or
// already closed Engine.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.Window = nil
	e.Buffer = nil
	e.Spectrum = nil
	e.backend = nil
	return nil
}
