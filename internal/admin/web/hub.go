package web

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	wsMsgTypeConnected    = "connected"
	wsMsgTypeCapabilities = "capabilities"
	wsMsgTypeStats        = "stats"
)

// wsMessage is the single envelope every dashboard push uses.
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// hub fans router snapshots out to every connected dashboard client,
// polling source on a ticker rather than subscribing to router events
// directly: the router has no event stream of its own (spec.md never
// asked for one), so periodic polling is the simplest faithful view.
type hub struct {
	source Source
	log    *slog.Logger

	clients    map[*wsClient]struct{}
	register   chan *wsClient
	unregister chan *wsClient

	pollInterval time.Duration

	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func newHub(source Source, log *slog.Logger, pollInterval time.Duration) *hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &hub{
		source:       source,
		log:          log,
		clients:      make(map[*wsClient]struct{}),
		register:     make(chan *wsClient),
		unregister:   make(chan *wsClient),
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (h *hub) run() {
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.Close()
			}
			h.mu.Unlock()

		case <-ticker.C:
			h.broadcastSnapshot()
		}
	}
}

func (h *hub) broadcastSnapshot() {
	caps := capabilitySnapshot(h.source.Capabilities())

	h.broadcastAll(&wsMessage{Type: wsMsgTypeCapabilities, Payload: caps})
	h.broadcastAll(&wsMessage{
		Type: wsMsgTypeStats,
		Payload: map[string]any{
			"peer_count": h.source.PeerCount(),
		},
	})
}

func (h *hub) broadcastAll(msg *wsMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.Send(msg)
	}
}

func (h *hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *hub) stop() {
	h.cancel()
}
