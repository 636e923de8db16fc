// SPDX-License-Identifier: MIT
package transport

import (
	"sync/atomic"

	"spectrogen/internal/display"
	applog "spectrogen/internal/log"
)

// LogSink records presented frames in the debug log.
type LogSink struct {
	frames atomic.Uint64
}

// NewLogSink creates a new LogSink instance.
func NewLogSink() *LogSink {
	applog.Infof("transport: using log sink")
	return &LogSink{}
}

// Present logs the frame sequence number and size. It never fails.
func (s *LogSink) Present(p *display.Picture) error {
	s.frames.Add(1)
	if applog.GetLevel() <= applog.LevelDebug {
		b := p.Image.Bounds()
		applog.Debugf("transport: frame %d (%dx%d) committed %s",
			p.Seq, b.Dx(), b.Dy(), p.Timestamp.Format("15:04:05.000"))
	}
	return nil
}

// Frames returns the number of frames seen.
func (s *LogSink) Frames() uint64 { return s.frames.Load() }

// Close logs the frame count.
func (s *LogSink) Close() error {
	applog.Infof("transport: log sink closed after %d frames", s.frames.Load())
	return nil
}
