// SPDX-License-Identifier: MIT
package fourier

import (
	"fmt"
	"math"
	"strings"

	"spectrogen/internal/fault"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Kind selects an analysis window.
type Kind int

// Every window kind is scaled so its coefficients sum to 1.
const (
	Rect Kind = iota
	Triangular
	Gaussian
	ExponentialCausal
	Hann
	Hamming
	Blackman
	BlackmanHarris
	Nuttall
	BartlettHann
	Lanczos
)

var kindNames = map[Kind]string{
	Rect:              "rect",
	Triangular:        "tri",
	Gaussian:          "gauss",
	ExponentialCausal: "expc",
	Hann:              "hann",
	Hamming:           "hamming",
	Blackman:          "blackman",
	BlackmanHarris:    "blackmanharris",
	Nuttall:           "nuttall",
	BartlettHann:      "bartletthann",
	Lanczos:           "lanczos",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Shaped reports whether the kind uses the variance parameter.
func (k Kind) Shaped() bool {
	return k == Gaussian || k == ExponentialCausal
}

// ParseKind converts a window name (case-insensitive) to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rect", "rectangular":
		return Rect, nil
	case "tri", "triangular":
		return Triangular, nil
	case "gauss", "gaussian":
		return Gaussian, nil
	case "expc", "exponential":
		return ExponentialCausal, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmanharris":
		return BlackmanHarris, nil
	case "nuttall":
		return Nuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "lanczos":
		return Lanczos, nil
	default:
		return Rect, fmt.Errorf("%w: unknown window type %q", fault.ErrInvalidArgument, name)
	}
}

// Fill writes the window of the given kind into w. variance is ignored by
// kinds that are not Shaped.
func Fill(kind Kind, w []float64, variance float64) error {
	if len(w) == 0 {
		return fmt.Errorf("%w: empty window", fault.ErrInvalidArgument)
	}
	switch kind {
	case Rect:
		FillRect(w)
	case Triangular:
		FillTriangular(w)
	case Gaussian:
		FillGaussian(w, variance)
	case ExponentialCausal:
		FillExponentialCausal(w, variance)
	case Hann:
		fillGonum(w, window.Hann)
	case Hamming:
		fillGonum(w, window.Hamming)
	case Blackman:
		fillGonum(w, window.Blackman)
	case BlackmanHarris:
		fillGonum(w, window.BlackmanHarris)
	case Nuttall:
		fillGonum(w, window.Nuttall)
	case BartlettHann:
		fillGonum(w, window.BartlettHann)
	case Lanczos:
		fillGonum(w, window.Lanczos)
	default:
		return fmt.Errorf("%w: unknown window kind %d", fault.ErrInvalidArgument, int(kind))
	}
	return nil
}

// FillRect sets every coefficient to 1/n.
func FillRect(w []float64) {
	c := 1 / float64(len(w))
	for i := range w {
		w[i] = c
	}
}

// FillTriangular writes a ramp rising from 0 at both edges to a peak at the
// centre. Windows too short to hold a non-zero ramp fall back to FillRect.
func FillTriangular(w []float64) {
	half := float64(len(w)-1) / 2
	for i := range w {
		w[i] = half - math.Abs(float64(i)-half)
	}
	normalize(w)
}

// FillGaussian writes sqrt(v/pi)/n * exp(-a*i*i) with a = v/n^2 and i the
// offset from the centre n/2. The continuous window integrates to 1; a larger
// variance gives a narrower window.
func FillGaussian(w []float64, variance float64) {
	n := float64(len(w))
	mult := math.Sqrt(variance/math.Pi) / n
	a := variance / (n * n)
	centre := len(w) / 2
	for k := range w {
		i := float64(k - centre)
		w[k] = mult * math.Exp(-a*i*i)
	}
}

// FillExponentialCausal zeroes the first half of w and writes a*exp(-i*a),
// a = v/n, over the second half. The zero half means the window never looks
// ahead of its centre sample.
func FillExponentialCausal(w []float64, variance float64) {
	n := len(w)
	radius := n / 2
	a := variance / float64(n)
	for i := 0; i < radius; i++ {
		w[i] = 0
	}
	for i := 0; i < n-radius; i++ {
		w[radius+i] = a * math.Exp(-float64(i)*a)
	}
}

// fillGonum applies a gonum window to a slice of ones and rescales it.
func fillGonum(w []float64, fn func([]float64) []float64) {
	if len(w) == 1 {
		w[0] = 1
		return
	}
	for i := range w {
		w[i] = 1
	}
	fn(w)
	for i, v := range w {
		// Cosine sums that vanish at the edges can round to tiny negatives.
		if v < 0 {
			w[i] = 0
		}
	}
	normalize(w)
}

func normalize(w []float64) {
	sum := floats.Sum(w)
	if sum <= 0 {
		FillRect(w)
		return
	}
	floats.Scale(1/sum, w)
}

// Convolve multiplies samples in place by the window applied back to front:
// samples[i] *= window[n-1-i]. Reversal is invisible for symmetric windows
// and keeps the causal exponential window pointing into the past.
func Convolve(samples, win []float64) {
	n := len(win)
	for i := range samples[:n] {
		samples[i] *= win[n-1-i]
	}
}
