// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
	"testing"
)

func TestGateEnable(t *testing.T) {
	var gate NoiseGate
	if gate.Enabled() {
		t.Fatal("zero gate should be disabled")
	}

	gate.Enable()
	gate.Enable() // Multiple calls should be idempotent
	if !gate.Enabled() {
		t.Error("Gate should be enabled after Enable()")
	}

	gate.Disable()
	gate.Disable()
	if gate.Enabled() {
		t.Error("Gate should be disabled after Disable()")
	}
}

func TestGateThresholdBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.1, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.1, 0.1},
		{0.5, 0.5}, // Middle
		{1.0, 1.0}, // Maximum
		{1.5, 1.0}, // Above max
	}

	var gate NoiseGate

	for _, tt := range tests {
		t.Run(strconv.FormatFloat(tt.input, 'f', 2, 64), func(t *testing.T) {
			gate.SetThreshold(tt.input)
			got := gate.Threshold()

			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("Gate threshold: got %.6f, want %.6f", got, tt.expected)
			}
		})
	}
}

func TestGateBlocks(t *testing.T) {
	var gate NoiseGate
	gate.SetThreshold(0.5)
	if gate.Blocks(quietBuffer) {
		t.Error("disabled gate blocked a chunk")
	}

	gate.Enable()
	if !gate.Blocks(quietBuffer) {
		t.Error("quiet chunk passed a 0.5 gate")
	}
	if gate.Blocks(loudBuffer) {
		t.Error("loud chunk blocked by a 0.5 gate")
	}
	if !gate.Blocks(nil) {
		t.Error("empty chunk has zero peak and should be blocked")
	}
}

func TestPeak(t *testing.T) {
	tests := []struct {
		in   []float32
		want float32
	}{
		{nil, 0},
		{[]float32{0.25, -0.75, 0.5}, 0.75},
		{[]float32{-1}, 1},
	}
	for _, tt := range tests {
		if got := peak(tt.in); got != tt.want {
			t.Errorf("peak(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func BenchmarkGateBlocks(b *testing.B) {
	var gate NoiseGate
	gate.Enable()
	gate.SetThreshold(0.25)

	b.ReportAllocs()

	for b.Loop() {
		_ = gate.Blocks(loudBuffer)
	}
}
