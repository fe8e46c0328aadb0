// Package broadcast streams session snapshots to websocket observers.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typetest/internal/session"
)

const (
	writeWait     = 5 * time.Second
	sendQueueSize = 16
)

// Message is the JSON frame sent to observers.
type Message struct {
	Type string           `json:"type"`
	Time time.Time        `json:"time"`
	Data session.Snapshot `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans snapshots out to connected observers. Show never blocks on a
// slow observer: frames that do not fit its queue are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	logf    func(format string, args ...any)
}

// NewHub returns a Hub that reports connection errors through logf.
func NewHub(logf func(format string, args ...any)) *Hub {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Hub{
		clients: map[*client]struct{}{},
		logf:    logf,
	}
}

// Show implements session.Display.
func (h *Hub) Show(snap session.Snapshot) {
	payload, err := json.Marshal(Message{Type: "snapshot", Time: time.Now(), Data: snap})
	if err != nil {
		h.logf("failed to encode snapshot: %v\n", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = payload
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Clients returns the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the observer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("websocket upgrade failed: %v\n", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards inbound frames and unregisters the observer on close.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		c.close()
		h.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logf("websocket read failed: %v\n", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer func() {
		if cerr := c.conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	for payload := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logf("websocket write failed: %v\n", err)
			return
		}
	}
	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		// Best-effort close frame.
		_ = err
	}
}

// closeAll disconnects every observer.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// Handler returns the HTTP routes for the hub.
func Handler(h *Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}

// Listen binds addr so callers can report bind errors before serving.
func Listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// Serve runs the hub's HTTP server on ln until ctx is done.
func Serve(ctx context.Context, ln net.Listener, h *Hub) error {
	srv := &http.Server{
		Handler:           Handler(h),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		h.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
