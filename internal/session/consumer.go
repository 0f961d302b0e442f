package session

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/state"
)

// Consumer applies inbound snapshot frames to the session. It is only wired
// up for spectators; the owner's state is authoritative and never merged
// into.
type Consumer struct {
	sess *Session
	in   <-chan []byte
	log  *slog.Logger
}

// NewConsumer wires a relay connection's inbound frames to a session.
func NewConsumer(sess *Session, incoming <-chan []byte, logger *slog.Logger) *Consumer {
	return &Consumer{sess: sess, in: incoming, log: logger}
}

// Run merges inbound snapshots until the connection closes or ctx is done.
// It returns nil on a clean channel close (the server went away), which
// callers treat as a disconnect.
func (c *Consumer) Run(ctx context.Context) error {
	if c.sess.Role == relay.RoleOwner {
		return nil
	}

	for {
		select {
		case payload, ok := <-c.in:
			if !ok {
				return nil
			}

			var snap state.Snapshot
			if err := json.Unmarshal(payload, &snap); err != nil {
				c.log.Warn("undecodable snapshot dropped", "room", c.sess.RoomID, "err", err)
				continue
			}

			c.sess.ApplySnapshot(snap)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
