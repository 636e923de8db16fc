// SPDX-License-Identifier: MIT

// Package udp streams the latest spectrum column as datagrams.
package udp

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	applog "spectrogen/internal/log"
)

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 33 * time.Millisecond

// HeaderSize is the fixed part of a packet before the magnitudes.
const HeaderSize = 4 + 8 + 2

// MaxPayload is the largest IPv4 UDP payload.
const MaxPayload = 65507

// MaxBins is the most magnitudes one packet can carry.
const MaxBins = (MaxPayload - HeaderSize) / 4

/*
Packet layout, big endian:

	+----------+-----------+-------+------------------+
	| sequence | timestamp | count | magnitudes       |
	| uint32   | int64 ns  | uint16| count x float32  |
	+----------+-----------+-------+------------------+

The sequence starts at 1 and increases by one per packet sent.
*/

// ColumnSource supplies the magnitudes of the most recent spectrum column.
type ColumnSource interface {
	Bins() int
	ColumnInto(dst []float64) int
}

// Publisher sends the latest column of a ColumnSource every interval.
type Publisher struct {
	sender   *Sender
	source   ColumnSource
	interval time.Duration

	mu       sync.Mutex // guards ticker and done across Start and Stop
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	seq uint32

	// Reused on every tick.
	column []float64
	packet []byte
}

// NewPublisher validates its collaborators and sizes the packet buffer for
// the source's bin count, which must fit in one datagram (MaxBins).
func NewPublisher(interval time.Duration, sender *Sender, source ColumnSource) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp: column source cannot be nil")
	}
	bins := source.Bins()
	if bins > MaxBins {
		return nil, fmt.Errorf("udp: %d bins need %d bytes, over the %d byte datagram limit",
			bins, HeaderSize+4*bins, MaxPayload)
	}

	if interval <= 0 {
		interval = DefaultInterval
		applog.Warnf("udp: invalid interval, defaulting to %s", interval)
	}
	applog.Infof("udp: publisher every %s, %d bins", interval, bins)

	return &Publisher{
		sender:   sender,
		source:   source,
		interval: interval,
		column:   make([]float64, bins),
		packet:   make([]byte, 0, HeaderSize+4*bins),
	}, nil
}

// Start launches the publishing goroutine. It does nothing when already
// running.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("udp: Start called but already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.done = make(chan struct{})
	p.stopOnce = sync.Once{}
	ticker, done := p.ticker, p.done
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-done:
				return
			}
		}
	}()
}

// Stop ends the publishing goroutine and waits for it. It is safe to call
// when not running.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.done)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("udp: publisher stopped after %d packets", p.seq)
	return nil
}

// Close stops the publisher. The sender is left open.
func (p *Publisher) Close() error { return p.Stop() }

func (p *Publisher) publish() {
	n := p.source.ColumnInto(p.column)
	p.seq++
	p.packet = AppendPacket(p.packet[:0], p.seq, time.Now().UnixNano(), p.column[:n])

	if err := p.sender.Send(p.packet); err == nil && p.seq%100 == 1 {
		applog.Debugf("udp: sent packet %d (%d bytes)", p.seq, len(p.packet))
	}
}

// AppendPacket appends one encoded packet to dst. Magnitudes are narrowed
// to float32.
func AppendPacket(dst []byte, seq uint32, timestamp int64, magnitudes []float64) []byte {
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(timestamp))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(magnitudes)))
	for _, m := range magnitudes {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(m)))
	}
	return dst
}
