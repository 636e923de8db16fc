// SPDX-License-Identifier: MIT

// Package transport publishes presented frames outside the process.
package transport

import (
	"io"

	"spectrogen/internal/display"
)

// Transport is a frame sink that holds resources until closed.
// Implementations must be safe to Close while Present is running.
type Transport interface {
	display.Sink
	io.Closer
}

// Ensure the sinks satisfy the interface at compile time.
var (
	_ Transport = (*WebSocketTransport)(nil)
	_ Transport = (*LogSink)(nil)
)
