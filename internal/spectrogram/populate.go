// SPDX-License-Identifier: MIT

// Package spectrogram rasterizes windowed Fourier transforms of a sample
// stream into RGB images.
package spectrogram

import (
	"fmt"
	"math"
	"math/cmplx"

	"spectrogen/internal/fault"
	"spectrogen/internal/fourier"
	"spectrogen/internal/gradient"
)

// BytesPerPixel is the stride of one packed RGB pixel.
const BytesPerPixel = 3

// Populate renders samples into image as width x height packed RGB,
// row-major. Columns are time, left to right; rows are frequency with the
// highest bin on row 0. The DC bin is never drawn.
//
// With crop set, every column centre is at least Radius samples from either
// end so each window is built from real data. Otherwise the whole sample
// range is mapped and windows are zero-padded past the ends.
//
// Nothing is written to image when the arguments are rejected.
func Populate(image []byte, width, height int, samples []float64, crop bool,
	grad *gradient.ColourGradient, eng *fourier.Engine) error {
	if grad == nil || eng == nil {
		return fmt.Errorf("%w: nil gradient or engine", fault.ErrInvalidArgument)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", fault.ErrInvalidArgument, width, height)
	}
	if need := width * height * BytesPerPixel; len(image) < need {
		return fmt.Errorf("%w: image buffer holds %d bytes, need %d", fault.ErrInvalidArgument, len(image), need)
	}
	n := len(samples)
	if n < eng.Width {
		return fmt.Errorf("%w: %d samples, window needs %d", fault.ErrInvalidArgument, n, eng.Width)
	}

	span, offset := n, 0
	if crop {
		span, offset = n-eng.Width, eng.Radius
	}

	for c := 0; c < width; c++ {
		centre := c*span/width + offset
		fillWindow(eng.Buffer, samples, centre-eng.Radius)
		eng.Transform()

		for r := 0; r < height; r++ {
			j := min((height-r)*eng.Radius/height+1, eng.Radius)
			amplitude := math.Log(cmplx.Abs(eng.Spectrum[j]) * 2)
			grad.EvalInto(image[(c+r*width)*BytesPerPixel:], amplitude)
		}
	}
	return nil
}

// fillWindow copies samples[start:start+len(buf)] into buf, zero-filling
// the part that falls outside samples.
func fillWindow(buf, samples []float64, start int) {
	for k := range buf {
		if i := start + k; i >= 0 && i < len(samples) {
			buf[k] = samples[i]
		} else {
			buf[k] = 0
		}
	}
}
