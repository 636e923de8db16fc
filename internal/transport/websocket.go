// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"spectrogen/internal/display"
	"spectrogen/internal/fault"
	applog "spectrogen/internal/log"
	"spectrogen/internal/queue"

	"github.com/gorilla/websocket"
)

// FramesPath is the websocket endpoint clients connect to.
const FramesPath = "/frames"

// WebSocketTransport broadcasts every presented frame as a PNG binary
// message to the clients of FramesPath. Encoded frames wait in a queue for
// the broadcaster; beyond maxPending the oldest are dropped.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	pending    *queue.ArrayQueue
	maxPending int
	encoder    png.Encoder
	encBuf     bytes.Buffer

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
	closed   atomic.Bool

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func newWebSocketTransport(maxPending int) *WebSocketTransport {
	return &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // frames are public
			},
		},
		clients:    make(map[*websocket.Conn]bool),
		pending:    queue.New(),
		maxPending: max(maxPending, 1),
		encoder:    png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// NewWebSocketTransport listens on addr and starts serving FramesPath.
func NewWebSocketTransport(addr string, maxPending int) (*WebSocketTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("websocket listen on %s: %w", addr, err)
	}

	wst := newWebSocketTransport(maxPending)
	wst.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc(FramesPath, wst.handleWebSocket)
	wst.server = &http.Server{Handler: mux}

	wst.wg.Add(2)
	go func() {
		defer wst.wg.Done()
		applog.Infof("transport: websocket server on ws://%s%s", ln.Addr(), FramesPath)
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("transport: websocket server error: %v", err)
		}
	}()
	go func() {
		defer wst.wg.Done()
		wst.broadcast()
	}()

	return wst, nil
}

// Addr returns the listening address.
func (wst *WebSocketTransport) Addr() net.Addr { return wst.listener.Addr() }

// Clients returns the number of connected clients.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// Stats returns the number of frames sent and dropped.
func (wst *WebSocketTransport) Stats() (sent, dropped uint64) {
	return wst.sent.Load(), wst.dropped.Load()
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("transport: websocket upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	n := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("transport: client %s connected, total: %d", conn.RemoteAddr(), n)

	// Clients only listen; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.dropClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) dropClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, ok := wst.clients[conn]
	delete(wst.clients, conn)
	n := len(wst.clients)
	wst.clientsMu.Unlock()

	if ok {
		conn.Close()
		applog.Infof("transport: client %s disconnected, total: %d", conn.RemoteAddr(), n)
	}
}

// Present encodes p as PNG and queues it for broadcast. Frames are skipped
// while no client is connected.
func (wst *WebSocketTransport) Present(p *display.Picture) error {
	if wst.closed.Load() {
		return fault.ErrCancelled
	}
	if wst.Clients() == 0 {
		return nil
	}

	wst.encBuf.Reset()
	if err := wst.encoder.Encode(&wst.encBuf, p.Image); err != nil {
		return fmt.Errorf("png encode frame %d: %w", p.Seq, err)
	}
	wst.enqueue(bytes.Clone(wst.encBuf.Bytes()))
	return nil
}

// enqueue hands data to the broadcaster, dropping the oldest pending
// frames to stay within maxPending.
func (wst *WebSocketTransport) enqueue(data []byte) {
	for wst.pending.Len() >= wst.maxPending {
		if _, err := wst.pending.Dequeue(false); err != nil {
			break
		}
		wst.dropped.Add(1)
	}
	wst.pending.Enqueue(data)
}

func (wst *WebSocketTransport) broadcast() {
	for {
		data, err := wst.pending.Dequeue(true)
		if err != nil {
			// Cancelled by Close.
			return
		}

		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteMessage(websocket.BinaryMessage, data); err != nil {
				applog.Warnf("transport: error sending to client %s: %v", client.RemoteAddr(), err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
		wst.sent.Add(1)
	}
}

// Close cancels the pending queue, disconnects every client and stops the
// server. It is safe to call more than once.
func (wst *WebSocketTransport) Close() error {
	if wst.closed.Swap(true) {
		return nil
	}
	applog.Infof("transport: closing websocket server")

	wst.pending.Cancel()

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	var err error
	if wst.server != nil {
		err = wst.server.Close()
	}
	wst.wg.Wait()

	sent, dropped := wst.Stats()
	applog.Debugf("transport: websocket sent %d frames, dropped %d", sent, dropped)
	return err
}
