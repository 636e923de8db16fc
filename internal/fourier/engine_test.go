// SPDX-License-Identifier: MIT
package fourier

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"spectrogen/internal/fault"
)

const (
	testWidth      = 1024
	testSampleRate = 8192 // 8 Hz per bin at testWidth
)

func fillTone(buf []float64, freq float64) {
	for i := range buf {
		buf[i] = math.Sin(2 * math.Pi * freq * float64(i) / testSampleRate)
	}
}

func peakBin(spectrum []complex128) int {
	best, bestMag := 0, -1.0
	for k, v := range spectrum {
		if m := cmplx.Abs(v); m > bestMag {
			best, bestMag = k, m
		}
	}
	return best
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(testWidth, Hann, 0, BackendGonum)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer e.Close()

	if e.Radius != testWidth/2 {
		t.Errorf("Radius = %d, want %d", e.Radius, testWidth/2)
	}
	if len(e.Buffer) != testWidth || len(e.Window) != testWidth {
		t.Errorf("Buffer/Window lengths = %d/%d, want %d", len(e.Buffer), len(e.Window), testWidth)
	}
	if len(e.Spectrum) != e.Radius+1 {
		t.Errorf("len(Spectrum) = %d, want %d", len(e.Spectrum), e.Radius+1)
	}
	if e.Kind() != Hann {
		t.Errorf("Kind() = %v, want hann", e.Kind())
	}
}

func TestNewEngineErrors(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  error
	}{
		{"zero", 0, fault.ErrInvalidArgument},
		{"negative", -4, fault.ErrInvalidArgument},
		{"too wide", MaxWindowWidth + 1, fault.ErrResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(tt.width, Rect, 0, BackendGonum)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewEngine(%d) error = %v, want %v", tt.width, err, tt.want)
			}
			if e != nil {
				t.Error("NewEngine returned an engine alongside an error")
			}
		})
	}
}

func TestTransformFindsTone(t *testing.T) {
	for _, backend := range []BackendKind{BackendGonum, BackendGoDSP} {
		t.Run(backend.String(), func(t *testing.T) {
			e, err := NewEngine(testWidth, Hann, 0, backend)
			if err != nil {
				t.Fatalf("NewEngine() error = %v", err)
			}
			defer e.Close()

			fillTone(e.Buffer, 1000)
			e.Transform()

			if got, want := peakBin(e.Spectrum), 125; got != want {
				t.Errorf("peak bin = %d, want %d", got, want)
			}
			if f := e.BinFrequency(125, testSampleRate); f != 1000 {
				t.Errorf("BinFrequency(125) = %v, want 1000", f)
			}
		})
	}
}

func TestBackendsAgree(t *testing.T) {
	a, err := NewEngine(256, Blackman, 0, BackendGonum)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine(256, Blackman, 0, BackendGoDSP)
	if err != nil {
		t.Fatal(err)
	}
	fillTone(a.Buffer, 700)
	fillTone(b.Buffer, 700)
	a.Transform()
	b.Transform()

	for k := range a.Spectrum {
		if cmplx.Abs(a.Spectrum[k]-b.Spectrum[k]) > 1e-9 {
			t.Fatalf("bin %d: gonum %v, godsp %v", k, a.Spectrum[k], b.Spectrum[k])
		}
	}
}

func TestParseBackend(t *testing.T) {
	for in, want := range map[string]BackendKind{"": BackendGonum, "gonum": BackendGonum, "GoDSP": BackendGoDSP} {
		if got, err := ParseBackend(in); err != nil || got != want {
			t.Errorf("ParseBackend(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseBackend("fftw"); !errors.Is(err, fault.ErrInvalidArgument) {
		t.Errorf("ParseBackend(fftw) error = %v, want ErrInvalidArgument", err)
	}
}

func TestEngineCloseIdempotent(t *testing.T) {
	e, err := NewEngine(16, Rect, 0, BackendGonum)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	var nilEngine *Engine
	if err := nilEngine.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestTransformHotPath(t *testing.T) {
	e, err := NewEngine(testWidth, Hann, 0, BackendGonum)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	// Warm-up call.
	fillTone(e.Buffer, 440)
	e.Transform()
	allocs := testing.AllocsPerRun(100, func() {
		fillTone(e.Buffer, 440)
		e.Transform()
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Transform hot path, got %.1f", allocs)
	}
}

func BenchmarkTransform(b *testing.B) {
	e, err := NewEngine(testWidth, Hann, 0, BackendGonum)
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	b.ReportAllocs()

	for b.Loop() {
		fillTone(e.Buffer, 440)
		e.Transform()
	}
}
