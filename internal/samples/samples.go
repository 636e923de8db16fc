// SPDX-License-Identifier: MIT
/*
Package samples loads static sample sequences for one-shot rendering:
- Text files: a count on the first line, then one sample per line
- WAV files: channel 0 of any PCM depth, scaled to [-1, 1]
- A synthetic test signal when no file is given
*/
package samples

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spectrogen/internal/fault"
	applog "spectrogen/internal/log"

	"github.com/go-audio/wav"
)

// DefaultSampleRate is assumed for text files, which carry no rate.
const DefaultSampleRate = 44100

// Clip is a decoded sample sequence.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load reads a clip from path. Files ending in .wav are decoded as WAV,
// anything else is read as text.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sample file: %w", err)
	}
	defer f.Close()

	var clip *Clip
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		clip, err = ReadWAV(f)
	default:
		var s []float64
		s, err = ReadText(f)
		clip = &Clip{Samples: s, SampleRate: DefaultSampleRate}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	applog.Infof("samples: read %d samples from %s (%.2fs)", len(clip.Samples), path, clip.Duration())
	return clip, nil
}

// ReadText parses the text format: the first line holds the sample count,
// each following line one sample. Extra trailing lines are ignored.
func ReadText(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: file is empty", fault.ErrInvalidArgument)
	}

	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, fmt.Errorf("%w: bad sample count: %v", fault.ErrInvalidArgument, err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative sample count %d", fault.ErrInvalidArgument, n)
	}

	samples := make([]float64, n)
	for i := range samples {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: sample numbers do not match: header says %d, found %d",
				fault.ErrInvalidArgument, n, i)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", fault.ErrInvalidArgument, i+2, err)
		}
		samples[i] = v
	}
	return samples, nil
}

// ReadWAV decodes channel 0 of a PCM WAV stream.
func ReadWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", fault.ErrInvalidArgument)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("%w: WAV has no channels", fault.ErrInvalidArgument)
	}
	depth := int(dec.BitDepth)
	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", fault.ErrInvalidArgument, depth)
	}
	if channels > 1 {
		applog.Debugf("samples: WAV has %d channels, using channel 0", channels)
	}

	scale := 1 / float64(int64(1)<<(depth-1))
	// 8-bit WAV is unsigned.
	var bias float64
	if depth == 8 {
		bias = -128
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range samples {
		samples[i] = (float64(buf.Data[i*channels]) + bias) * scale
	}

	return &Clip{Samples: samples, SampleRate: int(dec.SampleRate)}, nil
}
