// SPDX-License-Identifier: MIT
package spectrogram

import (
	"fmt"
	"math/cmplx"
	"sync"
	"time"

	"spectrogen/internal/fault"
	"spectrogen/internal/fourier"
	"spectrogen/internal/gradient"
	applog "spectrogen/internal/log"
)

// Rasterizer renders frames of a fixed size with one engine and gradient.
// Render must not be called concurrently; ColumnInto and Bins may be called
// from any goroutine.
type Rasterizer struct {
	eng    *fourier.Engine
	grad   *gradient.ColourGradient
	width  int
	height int

	mu     sync.RWMutex
	column []float64 // magnitudes of the most recent column
	frames uint64
}

// NewRasterizer binds an engine and a gradient to an image size.
func NewRasterizer(eng *fourier.Engine, grad *gradient.ColourGradient, width, height int) (*Rasterizer, error) {
	if eng == nil || grad == nil {
		return nil, fmt.Errorf("%w: nil gradient or engine", fault.ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", fault.ErrInvalidArgument, width, height)
	}
	return &Rasterizer{
		eng:    eng,
		grad:   grad,
		width:  width,
		height: height,
		column: make([]float64, eng.Radius+1),
	}, nil
}

// Size returns the image dimensions in pixels.
func (r *Rasterizer) Size() (width, height int) { return r.width, r.height }

// MinSamples is the smallest sample count Render accepts.
func (r *Rasterizer) MinSamples() int { return r.eng.Width }

// Engine returns the transform engine.
func (r *Rasterizer) Engine() *fourier.Engine { return r.eng }

// Render populates image (packed RGB, width*height*3 bytes) from samples and
// records the magnitude spectrum of the rightmost column.
func (r *Rasterizer) Render(image []byte, samples []float64, crop bool) error {
	start := time.Now()
	if err := Populate(image, r.width, r.height, samples, crop, r.grad, r.eng); err != nil {
		return err
	}

	r.mu.Lock()
	for k, v := range r.eng.Spectrum {
		r.column[k] = cmplx.Abs(v)
	}
	r.frames++
	frames := r.frames
	r.mu.Unlock()

	if applog.GetLevel() <= applog.LevelDebug && frames%100 == 1 {
		bin, _ := r.Peak()
		applog.Debugf("spectrogram: frame %d rendered in %v (%d samples, %dx%d, peak bin %d)",
			frames, time.Since(start), len(samples), r.width, r.height, bin)
	}
	return nil
}

// Bins returns the number of spectrum bins per column.
func (r *Rasterizer) Bins() int { return len(r.column) }

// ColumnInto copies the latest column magnitudes into dst and returns the
// number of values copied.
func (r *Rasterizer) ColumnInto(dst []float64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copy(dst, r.column)
}

// Frames returns the number of frames rendered so far.
func (r *Rasterizer) Frames() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frames
}

// Peak returns the strongest bin of the latest column, ignoring DC, and its
// magnitude. Before the first render it returns bin 1 with magnitude 0.
func (r *Rasterizer) Peak() (bin int, magnitude float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bin = PeakBin(r.column, 1, len(r.column)-1)
	return bin, r.column[bin]
}

// PeakBin returns the index of the largest magnitude in [lo, hi], clamped
// to the slice. An empty slice yields 0.
func PeakBin(magnitudes []float64, lo, hi int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	lo = max(lo, 0)
	hi = min(hi, len(magnitudes)-1)
	if lo > hi {
		lo = hi
	}

	peak := lo
	for k := lo + 1; k <= hi; k++ {
		if magnitudes[k] > magnitudes[peak] {
			peak = k
		}
	}
	return peak
}
