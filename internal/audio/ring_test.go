// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"testing"
)

func snapshot(r *SampleRing) []float64 {
	dst := make([]float64, r.Len())
	r.Snapshot(dst)
	return dst
}

func equalSamples(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSampleRingWrite(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]float32
		want   []float64
	}{
		{"empty", nil, []float64{0, 0, 0, 0}},
		{"partial", [][]float32{{1, 2}}, []float64{0, 0, 1, 2}},
		{"wraps oldest first", [][]float32{{1, 2, 3}, {4, 5}}, []float64{2, 3, 4, 5}},
		{"exact fill", [][]float32{{1, 2, 3, 4}}, []float64{1, 2, 3, 4}},
		{"overflow keeps tail", [][]float32{{9}, {1, 2, 3, 4, 5, 6}}, []float64{3, 4, 5, 6}},
		{"after overflow", [][]float32{{1, 2, 3, 4, 5, 6}, {7}}, []float64{4, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSampleRing(4)
			for _, c := range tt.chunks {
				r.Write(c)
			}
			if got := snapshot(r); !equalSamples(got, tt.want) {
				t.Errorf("Snapshot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSampleRingShortSnapshot(t *testing.T) {
	r := NewSampleRing(5)
	r.Write([]float32{1, 2, 3, 4, 5, 6, 7})
	r.Write([]float32{8, 9})

	dst := make([]float64, 3)
	if n := r.Snapshot(dst); n != 3 {
		t.Fatalf("Snapshot() = %d, want 3", n)
	}
	if want := []float64{7, 8, 9}; !equalSamples(dst, want) {
		t.Errorf("Snapshot() = %v, want %v", dst, want)
	}
}

func TestSampleRingPause(t *testing.T) {
	r := NewSampleRing(3)
	r.Write([]float32{1, 2, 3})

	r.SetPaused(true)
	r.Write([]float32{7, 7, 7})
	if got := snapshot(r); !equalSamples(got, []float64{1, 2, 3}) {
		t.Errorf("paused ring changed: %v", got)
	}

	if paused := r.TogglePaused(); paused {
		t.Error("TogglePaused() = true, want resumed")
	}
	r.Write([]float32{4})
	if got := snapshot(r); !equalSamples(got, []float64{2, 3, 4}) {
		t.Errorf("Snapshot() = %v after resume", got)
	}
	if !r.TogglePaused() || !r.Paused() {
		t.Error("TogglePaused() did not pause")
	}
}

func TestSampleRingConcurrentAccess(t *testing.T) {
	r := NewSampleRing(1024)
	chunk := make([]float32, 256)
	for i := range chunk {
		chunk[i] = 1
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			r.Write(chunk)
		}
	}()

	dst := make([]float64, 1024)
	for range 200 {
		r.Snapshot(dst)
		for _, v := range dst {
			if v != 0 && v != 1 {
				t.Fatalf("torn sample %v", v)
			}
		}
	}
	wg.Wait()
}

func TestSampleRingHotPath(t *testing.T) {
	r := NewSampleRing(4096)
	chunk := make([]float32, 512)
	dst := make([]float64, 4096)

	allocs := testing.AllocsPerRun(100, func() {
		r.Write(chunk)
		r.Snapshot(dst)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in ring hot path, got %.1f", allocs)
	}
}

func BenchmarkSampleRingWrite(b *testing.B) {
	r := NewSampleRing(96000)
	chunk := make([]float32, 512)

	b.ReportAllocs()

	for b.Loop() {
		r.Write(chunk)
	}
}
