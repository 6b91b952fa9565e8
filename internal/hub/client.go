package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aura-events/concierge-service/internal/config"
	"github.com/aura-events/concierge-service/internal/domain"
	"github.com/aura-events/concierge-service/internal/log"
)

// Client wraps one websocket connection. Frames are read and handled one at
// a time, so a single connection's frames are processed strictly in arrival
// order.
type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	State  *domain.Connection
	config config.WebSocketConfig

	closeCode int
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	return &Client{
		ID:        id,
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		State:     domain.NewConnection(id),
		config:    cfg,
		closeCode: -1,
	}
}

// ReadPump consumes inbound frames until the transport closes, then
// deregisters the client. onClose runs after deregistration so teardown
// (presence, audit trail) observes final membership.
func (c *Client) ReadPump(handler func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		c.State.MarkClosed()
		c.Hub.Unregister(c)
		c.Conn.Close()
		if onClose != nil {
			onClose(c)
		}
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				c.closeCode = ce.Code
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l := log.L()
				l.Warn().Str(log.FieldConnectionID, c.ID).Err(err).Msg("websocket read error")
			}
			break
		}

		c.State.UpdateActivity()

		handler(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage marshals and queues a frame for delivery. A full send buffer
// drops the frame rather than blocking the caller.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
	default:
		return nil
	}
	return nil
}

// CloseCode reports the websocket close code observed on teardown, or -1
// when the transport ended without a close frame.
func (c *Client) CloseCode() int {
	return c.closeCode
}
