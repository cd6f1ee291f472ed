// Package ws implements the real-time client channel over websocket.
// Each connection gets its own session; messages use a small
// {event, data} JSON envelope in both directions.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/gorilla/websocket"

	"hytalepanel/internal/boundaries/in"
	"hytalepanel/internal/boundaries/out"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendQueueSize  = 256
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SessionFactory builds a session bound to one client's event sink.
type SessionFactory func(sink out.EventSink) in.Session

// Handler upgrades HTTP requests into live panel connections.
type Handler struct {
	newSession SessionFactory
	upgrader   websocket.Upgrader
	log        zerowrap.Logger
}

// NewHandler creates a websocket handler.
func NewHandler(newSession SessionFactory, log zerowrap.Logger) *Handler {
	return &Handler{
		newSession: newSession,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The panel is same-origin behind its own server; auth
			// happens in middleware before the upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Serve upgrades the request and runs the connection until it closes.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) error {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := &connection{
		socket: socket,
		send:   make(chan []byte, sendQueueSize),
		quit:   make(chan struct{}),
		log:    h.log,
	}
	session := h.newSession(conn)

	h.log.Info().Str("remote", socket.RemoteAddr().String()).Msg("client connected")

	go conn.writePump()
	conn.readPump(session)

	session.Close()
	conn.close()
	h.log.Info().Str("remote", socket.RemoteAddr().String()).Msg("client disconnected")
	return nil
}

// connection is one live client. It implements the EventSink interface;
// a client too slow to drain its queue loses events instead of blocking
// the session.
type connection struct {
	socket *websocket.Conn
	send   chan []byte
	quit   chan struct{}
	log    zerowrap.Logger

	mu     sync.Mutex
	closed bool
}

// Emit queues one event for delivery. Session goroutines outlive
// session.Close briefly and keep emitting on their way out, so events
// after close are dropped rather than racing the write pump teardown.
func (c *connection) Emit(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("failed to encode event payload")
		return
	}

	message, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("failed to encode event envelope")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- message:
	default:
		c.log.Warn().Str("event", event).Msg("send queue full, dropping event")
	}
}

// close signals the write pump and marks the connection dead. The send
// channel is never closed; late emitters only ever see the closed flag.
func (c *connection) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.quit)
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.quit:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) readPump(session in.Session) {
	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}

		var msg envelope
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.Warn().Err(err).Msg("discarding malformed message")
			continue
		}

		dispatch(context.Background(), session, msg, c.log)
	}
}
