package relay

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Snapshots carry full
	// pseudocode plus execution traces, so this is generous.
	maxMessageSize = 256 * 1024 // 256 KB

	// Outbound buffer per connection. When it fills, frames for that
	// member are dropped rather than stalling the room.
	sendBufferSize = 64
)

// Client is a wrapper for a single websocket connection (a participant).
// RoomID and Role are fixed for the life of the connection.
type Client struct {
	// ID uniquely identifies this transport-level session. Not persisted
	// across reconnects.
	ID string

	// Hub is the hub that manages this client.
	Hub *Hub

	// Conn is the websocket connection.
	Conn *websocket.Conn

	// RoomID is the canonical id of the room the client joined.
	RoomID string

	// Role is the declared role, fixed at join time.
	Role Role

	// Send is a buffered channel for all outbound frames. The hub writes
	// to it; WritePump drains it onto the websocket.
	Send chan []byte
}

// NewClient wraps an upgraded websocket connection as a room participant.
func NewClient(hub *Hub, conn *websocket.Conn, roomID string, role Role) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Hub:    hub,
		Conn:   conn,
		RoomID: CanonicalRoomID(roomID),
		Role:   role,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump pumps frames from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. All reads on
// the connection happen from this goroutine, so there is at most one reader.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Warn("read failed", "client", c.ID, "err", err)
			}
			break
		}

		c.Hub.Inbound <- &frame{sender: c, payload: payload}
	}
}

// WritePump pumps frames from the hub to the websocket connection and sends
// periodic pings so half-closed transports get reaped by the read deadline
// on the other side.
//
// All writes on the connection happen from this goroutine, so there is at
// most one writer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
