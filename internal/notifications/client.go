package notifications

import (
	"log/slog"
	"time"

	"boostly/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// The stream is server-to-client; inbound frames are only control traffic.
	maxMessageSize = 512
)

// Client is one websocket connection subscribed to a company's events.
type Client struct {
	hub *Hub

	// Conn is nil in tests that exercise the hub without a socket.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	CompanyID uint
}

func newClient(hub *Hub, conn *websocket.Conn, companyID uint) *Client {
	return &Client{
		hub:       hub,
		Conn:      conn,
		CompanyID: companyID,
		Send:      make(chan []byte, 64),
	}
}

// ReadPump drains inbound frames so pongs and close frames are processed.
// It unregisters the client when the connection ends.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("like stream read error",
					slog.Uint64("company_id", uint64(c.CompanyID)),
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. A full buffer drops the message.
func (c *Client) TrySend(message []byte) bool {
	select {
	case c.Send <- message:
		return true
	default:
		middleware.Logger.Warn("like stream buffer full, dropped message",
			slog.Uint64("company_id", uint64(c.CompanyID)),
		)
		return false
	}
}
