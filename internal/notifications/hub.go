package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"boostly/internal/middleware"
	"boostly/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerCompany = 8
	maxTotalConns      = 5000
)

var (
	// ErrCompanyConnLimit is returned when a company already has the maximum number of streams.
	ErrCompanyConnLimit = errors.New("company connection limit reached")
	// ErrServerConnLimit is returned when the hub is full.
	ErrServerConnLimit = errors.New("server connection limit reached")
	// ErrHubClosed is returned by Register after Shutdown.
	ErrHubClosed = errors.New("hub is shut down")
)

// Hub maps company id to the websocket clients streaming its events.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for companyID.
func (h *Hub) Register(companyID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[companyID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[companyID] = m
	}
	if len(m) >= maxConnsPerCompany {
		return nil, ErrCompanyConnLimit
	}

	client := newClient(h, conn, companyID)
	m[client] = struct{}{}
	h.total++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// Unregister removes client and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.CompanyID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.CompanyID)
	}
	h.total--
	close(client.Send)
	observability.WebSocketConnections.Dec()
}

// Count returns the number of clients connected for companyID.
func (h *Hub) Count(companyID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[companyID])
}

// Broadcast sends message to every client of companyID.
func (h *Hub) Broadcast(companyID uint, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[companyID] {
		c.TrySend(message)
	}
}

// StartWiring forwards messages from the Notifier's company channels to local clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartCompanySubscriber(ctx, func(channel, payload string) {
		var companyID uint
		if _, err := fmt.Sscanf(channel, "notifications:company:%d", &companyID); err != nil {
			middleware.Logger.Warn("invalid notification channel", slog.String("channel", channel))
			return
		}
		h.Broadcast(companyID, []byte(payload))
	})
}

// Shutdown closes every client's send channel; WritePump then sends a close frame.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	for companyID, clients := range h.conns {
		for c := range clients {
			close(c.Send)
			observability.WebSocketConnections.Dec()
		}
		delete(h.conns, companyID)
	}
	h.total = 0
	return nil
}
