// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"
	"sync/atomic"

	applog "spectrogen/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// recordBitDepth is the PCM depth of recordings.
const recordBitDepth = 16

// StartRecording begins writing the captured input to a mono 16-bit WAV
// file.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	rate := int(e.config.Audio.SampleRate)
	frames := max(e.config.Audio.FramesPerBuffer, 1)

	e.recMu.Lock()
	e.outputFile = file
	e.wavEncoder = wav.NewEncoder(file, rate, recordBitDepth, 1, 1)
	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  rate,
		},
		SourceBitDepth: recordBitDepth,
		Data:           make([]int, frames),
	}
	e.recMu.Unlock()

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("audio: recording to %s", filename)

	return nil
}

// recordBuffer converts one chunk to 16-bit PCM and encodes it.
func (e *Engine) recordBuffer(in []float32) {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.wavEncoder == nil {
		return
	}
	if cap(e.sampleBuf.Data) < len(in) {
		e.sampleBuf.Data = make([]int, len(in))
	}
	e.sampleBuf.Data = e.sampleBuf.Data[:len(in)]
	for i, v := range in {
		e.sampleBuf.Data[i] = toPCM16(v)
	}

	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("audio: error writing to WAV file: %v", err)
	}
}

func toPCM16(v float32) int {
	switch {
	case v >= 1:
		return 32767
	case v <= -1:
		return -32768
	default:
		return int(v * 32767)
	}
}

// StopRecording finalizes the WAV header and closes the file.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	return nil
}
