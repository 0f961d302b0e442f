package sessionwire

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maiaiia/pseudocronic/internal/relay"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 256 * 1024
)

// Client manages the websocket connection between a participant and the
// relay. The room id and role are fixed at connect time for the life of the
// connection.
type Client struct {
	conn   *websocket.Conn
	RoomID string
	Role   relay.Role

	incoming chan []byte
	outgoing chan []byte
	done     chan struct{}
	closed   bool
}

// Connect dials the relay endpoint for the given room and role. On success
// the connection's read and write pumps are already running.
func Connect(ctx context.Context, roomURL string, roomID string, role relay.Role) (*Client, error) {
	u, err := url.Parse(roomURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, NewError("connect", fmt.Errorf("%w (HTTP %d)", err, resp.StatusCode))
		}
		return nil, NewError("connect", err)
	}

	c := &Client{
		conn:     conn,
		RoomID:   relay.CanonicalRoomID(roomID),
		Role:     role,
		incoming: make(chan []byte, 32),
		outgoing: make(chan []byte, 32),
		done:     make(chan struct{}),
	}

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return c, nil
}

// readPump reads frames from the websocket connection. The incoming channel
// closes when the connection does, which is how callers observe disconnects.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		c.incoming <- payload
	}
}

// writePump writes frames to the websocket connection and sends periodic
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send queues a frame for the relay. Sends are fire-and-forget: when the
// outgoing buffer is full the frame is dropped, matching the relay's
// best-effort contract.
func (c *Client) Send(payload []byte) {
	select {
	case c.outgoing <- payload:
	default:
	}
}

// Incoming returns the channel of frames broadcast into the room. It closes
// when the connection drops.
func (c *Client) Incoming() <-chan []byte {
	return c.incoming
}

// Close closes the websocket connection and cleans up resources.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true

	close(c.done)
}
