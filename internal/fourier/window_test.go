// SPDX-License-Identifier: MIT
package fourier

import (
	"errors"
	"math"
	"testing"

	"spectrogen/internal/fault"

	"gonum.org/v1/gonum/floats"
)

func TestFillRect(t *testing.T) {
	w := make([]float64, 4)
	if err := Fill(Rect, w, 0); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	for i, v := range w {
		if v != 0.25 {
			t.Errorf("w[%d] = %v, want 0.25", i, v)
		}
	}
}

func TestWindowsSumToOne(t *testing.T) {
	kinds := []Kind{Rect, Triangular, Hann, Hamming, Blackman, BlackmanHarris, Nuttall, BartlettHann, Lanczos}
	for _, kind := range kinds {
		for _, n := range []int{1, 2, 3, 64, 1024} {
			w := make([]float64, n)
			if err := Fill(kind, w, 0); err != nil {
				t.Fatalf("Fill(%s, %d) error = %v", kind, n, err)
			}
			if sum := floats.Sum(w); math.Abs(sum-1) > 1e-9 {
				t.Errorf("Fill(%s, %d) sums to %v, want 1", kind, n, sum)
			}
			for i, v := range w {
				if v < 0 || math.IsNaN(v) {
					t.Errorf("Fill(%s, %d): w[%d] = %v", kind, n, i, v)
				}
			}
		}
	}
}

func TestGaussianApproximatelyNormalized(t *testing.T) {
	w := make([]float64, 1024)
	FillGaussian(w, 50)
	if sum := floats.Sum(w); math.Abs(sum-1) > 1e-3 {
		t.Errorf("gaussian sums to %v, want ~1", sum)
	}
	if w[512] <= w[0] || w[512] <= w[1023] {
		t.Errorf("gaussian peak %v not above edges %v, %v", w[512], w[0], w[1023])
	}
}

func TestAnalyticWindowsKeepTruncatedScale(t *testing.T) {
	// Both windows are cut at the frame edge, so they sum to the mass of
	// the continuous window inside it rather than to 1.
	const n, variance = 1536, 6
	tests := []struct {
		kind Kind
		want float64
	}{
		{Gaussian, math.Erf(math.Sqrt(variance) / 2)},
		{ExponentialCausal, 1 - math.Exp(-variance/2)},
	}
	for _, tt := range tests {
		w := make([]float64, n)
		if err := Fill(tt.kind, w, variance); err != nil {
			t.Fatalf("Fill(%s) error = %v", tt.kind, err)
		}
		if sum := floats.Sum(w); math.Abs(sum-tt.want) > 5e-3 {
			t.Errorf("Fill(%s) sums to %v, want %v", tt.kind, sum, tt.want)
		}
	}
}

func TestExponentialCausal(t *testing.T) {
	w := make([]float64, 8)
	FillExponentialCausal(w, 8)
	for i := 0; i < 4; i++ {
		if w[i] != 0 {
			t.Errorf("w[%d] = %v, want 0", i, w[i])
		}
	}
	// a = v/n = 1
	if w[4] != 1 {
		t.Errorf("w[4] = %v, want 1", w[4])
	}
	for i := 5; i < 8; i++ {
		if w[i] >= w[i-1] {
			t.Errorf("w[%d] = %v not decaying from %v", i, w[i], w[i-1])
		}
	}
}

func TestTriangularShape(t *testing.T) {
	w := make([]float64, 5)
	FillTriangular(w)
	want := []float64{0, 1.0 / 4, 2.0 / 4, 1.0 / 4, 0}
	for i := range want {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Errorf("w[%d] = %v, want %v", i, w[i], want[i])
		}
	}
}

func TestConvolve(t *testing.T) {
	t.Run("rect", func(t *testing.T) {
		samples := []float64{1, 2, 3, 4}
		w := make([]float64, 4)
		FillRect(w)
		Convolve(samples, w)
		want := []float64{0.25, 0.5, 0.75, 1}
		for i := range want {
			if samples[i] != want[i] {
				t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
			}
		}
	})

	t.Run("reversed", func(t *testing.T) {
		samples := []float64{1, 1, 1}
		Convolve(samples, []float64{1, 2, 3})
		want := []float64{3, 2, 1}
		for i := range want {
			if samples[i] != want[i] {
				t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
			}
		}
	})
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"rect", Rect},
		{"TRI", Triangular},
		{" gauss ", Gaussian},
		{"expc", ExponentialCausal},
		{"hanning", Hann},
		{"blackmanharris", BlackmanHarris},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseKind("kaiser"); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("ParseKind(kaiser) error = %v, want ErrInvalidArgument", err)
	}
	if err := Fill(Rect, nil, 0); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("Fill(empty) error = %v, want ErrInvalidArgument", err)
	}
}
