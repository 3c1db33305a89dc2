package web

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds how long a single message write may take.
	writeWait = 10 * time.Second

	// pongWait bounds how long the server waits for a pong before
	// declaring the connection dead.
	pongWait = 60 * time.Second

	// pingPeriod must stay below pongWait so a ping always lands
	// before the peer's read deadline expires.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; the dashboard never sends
	// anything larger than a ping/pong control frame.
	maxMessageSize = 1024

	// sendBufferSize is the per-client outbound queue depth.
	sendBufferSize = 64
)

// wsClient is one dashboard WebSocket connection.
type wsClient struct {
	hub  *hub
	conn *websocket.Conn
	log  *slog.Logger

	send chan *wsMessage

	mu     sync.Mutex
	closed bool
}

func newWSClient(h *hub, conn *websocket.Conn, log *slog.Logger) *wsClient {
	return &wsClient{
		hub:  h,
		conn: conn,
		log:  log,
		send: make(chan *wsMessage, sendBufferSize),
	}
}

// Send queues msg for delivery; it drops the message rather than block
// if the client's buffer is full.
func (c *wsClient) Send(msg *wsMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		c.log.Warn("dashboard client send buffer full, dropping message")
	}
}

func (c *wsClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

func (c *wsClient) readPump() {
	defer func() { c.hub.unregister <- c }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
