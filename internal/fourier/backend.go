// SPDX-License-Identifier: MIT
package fourier

import (
	"fmt"
	"strings"

	"spectrogen/internal/fault"

	"github.com/mjibson/go-dsp/fft"
	gonum "gonum.org/v1/gonum/dsp/fourier"
)

// Backend executes a real-input transform. Coefficients writes the half
// spectrum of seq (len(seq)/2 + 1 bins) into dst and returns it.
// *gonum.FFT satisfies Backend directly.
type Backend interface {
	Coefficients(dst []complex128, seq []float64) []complex128
}

// BackendKind selects the FFT implementation behind an Engine.
type BackendKind int

const (
	// BackendGonum plans once with gonum's dsp/fourier and reuses the plan.
	BackendGonum BackendKind = iota
	// BackendGoDSP uses mjibson/go-dsp. It allocates on every call and is
	// kept as a cross-check for the default backend.
	BackendGoDSP
)

func (b BackendKind) String() string {
	switch b {
	case BackendGonum:
		return "gonum"
	case BackendGoDSP:
		return "godsp"
	default:
		return fmt.Sprintf("BackendKind(%d)", int(b))
	}
}

// ParseBackend converts a backend name (case-insensitive) to a BackendKind.
func ParseBackend(name string) (BackendKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gonum":
		return BackendGonum, nil
	case "godsp", "go-dsp":
		return BackendGoDSP, nil
	default:
		return BackendGonum, fmt.Errorf("%w: unknown fft backend %q", fault.ErrInvalidArgument, name)
	}
}

// newBackend returns a transform plan for sequences of length n.
func newBackend(kind BackendKind, n int) (Backend, error) {
	switch kind {
	case BackendGonum:
		return gonum.NewFFT(n), nil
	case BackendGoDSP:
		return goDSP{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown fft backend %d", fault.ErrInvalidArgument, int(kind))
	}
}

type goDSP struct{}

func (goDSP) Coefficients(dst []complex128, seq []float64) []complex128 {
	full := fft.FFTReal(seq)
	bins := len(seq)/2 + 1
	if dst == nil {
		dst = make([]complex128, bins)
	}
	copy(dst, full[:bins])
	return dst
}
