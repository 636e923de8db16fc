// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

// NoiseGate blanks chunks whose peak amplitude falls below a threshold. The
// capture callback reads it while other goroutines may adjust it, so both
// fields are atomic. The zero value is an open (disabled) gate.
type NoiseGate struct {
	enabled   atomic.Bool
	threshold atomic.Uint32 // float32 bits, peak amplitude 0-1
}

// Enable turns the gate on.
func (g *NoiseGate) Enable() { g.enabled.Store(true) }

// Disable turns the gate off.
func (g *NoiseGate) Disable() { g.enabled.Store(false) }

// Enabled reports whether the gate is on.
func (g *NoiseGate) Enabled() bool { return g.enabled.Load() }

// SetThreshold sets the peak amplitude below which chunks are blanked,
// clamped to [0, 1]. 0 passes everything and 1 blocks all but full scale.
func (g *NoiseGate) SetThreshold(threshold float64) {
	threshold = min(max(threshold, 0), 1)
	g.threshold.Store(math.Float32bits(float32(threshold)))
}

// Threshold returns the current threshold.
func (g *NoiseGate) Threshold() float64 {
	return float64(math.Float32frombits(g.threshold.Load()))
}

// Blocks reports whether chunk should be replaced by silence.
func (g *NoiseGate) Blocks(chunk []float32) bool {
	if !g.enabled.Load() {
		return false
	}
	return peak(chunk) < math.Float32frombits(g.threshold.Load())
}

func peak(in []float32) float32 {
	var m float32
	for _, v := range in {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}
