package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/maiaiia/pseudocronic/internal/relay"
	"github.com/maiaiia/pseudocronic/internal/state"
)

// DefaultDebounce batches bursts of mutations (e.g. keystrokes) into a
// single broadcast.
const DefaultDebounce = 150 * time.Millisecond

// Sender is the outbound half of a relay connection, satisfied by
// *sessionwire.Client.
type Sender interface {
	Send(payload []byte)
}

// Producer turns local mutation events into outbound snapshot frames. Each
// send carries the current full relevant field set; sends are
// fire-and-forget with no acknowledgment and no retry.
type Producer struct {
	sess     *Session
	conn     Sender
	debounce time.Duration
	log      *slog.Logger
}

// NewProducer wires a session's mutation events to a relay connection.
func NewProducer(sess *Session, conn Sender, logger *slog.Logger) *Producer {
	return &Producer{
		sess:     sess,
		conn:     conn,
		debounce: DefaultDebounce,
		log:      logger,
	}
}

// Run consumes mutation events until ctx is done. It returns immediately
// when the session role is not owner: spectators never publish.
func (p *Producer) Run(ctx context.Context) {
	if p.sess.Role != relay.RoleOwner {
		return
	}

	timer := time.NewTimer(p.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-p.sess.Dirty():
			if !pending {
				timer.Reset(p.debounce)
				pending = true
			}

		case <-timer.C:
			pending = false
			p.publish()

		case <-ctx.Done():
			if pending {
				p.publish()
			}
			return
		}
	}
}

func (p *Producer) publish() {
	snap := state.SnapshotOf(p.sess.State())
	payload, err := json.Marshal(snap)
	if err != nil {
		p.log.Error("snapshot encode failed", "err", err)
		return
	}
	p.conn.Send(payload)
	p.log.Debug("snapshot published", "room", p.sess.RoomID, "bytes", len(payload))
}
