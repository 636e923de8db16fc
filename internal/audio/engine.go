// SPDX-License-Identifier: MIT
/*
Package audio captures the live input stream for the spectrogram:
- Mono float32 capture using PortAudio
- A ring of the most recent samples, snapshotted by the frame producer
- Optional noise gate that blanks chunks below a peak threshold
- WAV recording of the captured input with atomic state management

Thread Safety:
- The PortAudio callback is the only writer of the ring
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"spectrogen/internal/config"
	applog "spectrogen/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// Engine owns the capture stream and feeds a SampleRing.
type Engine struct {
	// Core configuration and state.
	config *config.Config
	ring   *SampleRing

	// Audio input handling.
	silence      []float32 // zeros written in place of gated chunks
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream
	chunks       atomic.Uint64

	gate NoiseGate

	// Recording state and buffers.
	isRecording int32      // Atomic flag for thread-safe state
	recMu       sync.Mutex // guards the encoder against StopRecording
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine resolves the configured input device and prepares buffers. The
// stream is not opened until StartInputStream.
func NewEngine(cfg *config.Config, ring *SampleRing) (*Engine, error) {
	if ring == nil {
		return nil, fmt.Errorf("audio: nil sample ring")
	}
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	e := newEngine(cfg, ring)
	e.inputDevice = inputDevice
	if cfg.Audio.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("audio: using input device %q (%.0f Hz, latency %v)",
		inputDevice.Name, cfg.Audio.SampleRate, e.inputLatency)
	return e, nil
}

func newEngine(cfg *config.Config, ring *SampleRing) *Engine {
	e := &Engine{
		config:  cfg,
		ring:    ring,
		silence: make([]float32, max(cfg.Audio.FramesPerBuffer, config.MaxBufferFrames)),
	}
	if cfg.Audio.GateThreshold > 0 {
		e.gate.Enable()
		e.gate.SetThreshold(cfg.Audio.GateThreshold)
	}
	return e
}

// StartInputStream opens a mono float32 stream on the input device and
// starts delivering chunks to the ring.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.FramesPerBuffer,
		SampleRate:      e.config.Audio.SampleRate,
		Flags:           portaudio.ClipOff,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

// StopInputStream stops and closes the stream if one is open.
func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
		applog.Debugf("audio: input stream closed after %d chunks", e.chunks.Load())
	}

	return nil
}

// Ring returns the ring the engine writes to.
func (e *Engine) Ring() *SampleRing { return e.ring }

// Gate returns the engine's noise gate. It may be adjusted while capturing.
func (e *Engine) Gate() *NoiseGate { return &e.gate }

// processInputStream is the PortAudio callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	e.processBuffer(in)

	if atomic.LoadInt32(&e.isRecording) == 1 {
		e.recordBuffer(in)
	}
}

// processBuffer writes one chunk to the ring, or an equal run of silence
// when the gate is closed.
func (e *Engine) processBuffer(in []float32) {
	e.chunks.Add(1)
	if len(in) <= len(e.silence) && e.gate.Blocks(in) {
		e.ring.Write(e.silence[:len(in)])
		return
	}
	e.ring.Write(in)
}

// Close stops recording and the input stream.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	return nil
}
