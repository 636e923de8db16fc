// SPDX-License-Identifier: MIT
package samples

import "math"

// TestSignal returns n samples made of four consecutive tones of a quarter
// of the length each: 500 Hz, 2 kHz, 6 kHz and 22 kHz at the given rate.
// Tones above the Nyquist frequency alias.
func TestSignal(n int, sampleRate float64) []float64 {
	out := make([]float64, n)
	quarter := n / 4
	for q, freq := range []float64{500, 2000, 6000, 22000} {
		Sine(out[q*quarter:(q+1)*quarter], sampleRate, freq, 1)
	}
	return out
}

// Sine fills dst with a sine of the given frequency and amplitude, starting
// at phase zero.
func Sine(dst []float64, sampleRate, frequency, amplitude float64) {
	for i := range dst {
		t := float64(i) / sampleRate
		dst[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
}
