package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// ErrRoomFull is returned from Join when a room is at capacity.
var ErrRoomFull = errors.New("room is full")

// DefaultMaxRoomSize bounds membership per room. It is a generous cap: one
// owner plus a classroom of spectators.
const DefaultMaxRoomSize = 32

// frame is an inbound payload tagged with its source connection. The relay
// never interprets the payload beyond checking that it is well-formed JSON.
type frame struct {
	sender  *Client
	payload []byte
}

// joinRequest asks the hub to register a client, reporting back whether the
// room had space.
type joinRequest struct {
	client *Client
	reply  chan error
}

// statsRequest asks the hub for a consistent view of the active rooms.
type statsRequest struct {
	reply chan []RoomStats
}

// RoomStats is a point-in-time summary of one room.
type RoomStats struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
	Owners  int    `json:"owners"`
}

// Hub is the central brain of the relay. It owns all room state; every
// mutation and every fan-out runs on the single Run goroutine, so no other
// synchronization is needed.
type Hub struct {
	log *slog.Logger

	maxRoomSize int

	// Rooms maps canonical room ids to Room instances.
	Rooms map[string]*Room

	register   chan *joinRequest
	stats      chan *statsRequest
	Unregister chan *Client
	Inbound    chan *frame
}

// NewHub creates a Hub with the given membership bound per room.
// A maxRoomSize of zero or less falls back to DefaultMaxRoomSize.
func NewHub(logger *slog.Logger, maxRoomSize int) *Hub {
	if maxRoomSize <= 0 {
		maxRoomSize = DefaultMaxRoomSize
	}
	return &Hub{
		log:         logger,
		maxRoomSize: maxRoomSize,
		Rooms:       make(map[string]*Room),
		register:    make(chan *joinRequest),
		stats:       make(chan *statsRequest),
		Unregister:  make(chan *Client),
		Inbound:     make(chan *frame),
	}
}

// CanonicalRoomID normalizes a client-supplied room identifier. Room ids are
// case-insensitive; codes are displayed upper-case.
func CanonicalRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Join registers the client under its RoomID, creating the room entry if
// absent. It blocks until the hub has processed the request and returns
// ErrRoomFull if the room is at capacity. Joining an unseen room id always
// succeeds; rooms are created on demand, never "not found".
func (h *Hub) Join(c *Client) error {
	req := &joinRequest{client: c, reply: make(chan error, 1)}
	h.register <- req
	return <-req.reply
}

// Stats returns a consistent snapshot of every active room.
func (h *Hub) Stats() []RoomStats {
	req := &statsRequest{reply: make(chan []RoomStats, 1)}
	h.stats <- req
	return <-req.reply
}

// Run starts the hub's main processing loop. It exits when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case req := <-h.register:
			req.reply <- h.handleJoin(req.client)

		case client := <-h.Unregister:
			h.handleLeave(client)

		case f := <-h.Inbound:
			h.handleFrame(f)

		case req := <-h.stats:
			req.reply <- h.handleStats()
		}
	}
}

func (h *Hub) handleJoin(c *Client) error {
	room, ok := h.Rooms[c.RoomID]
	if !ok {
		room = newRoom(c.RoomID)
		h.Rooms[c.RoomID] = room
		h.log.Info("room created", "room", room.ID)
	}

	if len(room.Members) >= h.maxRoomSize {
		// Drop the entry again if the failed join is what created it.
		if len(room.Members) == 0 {
			delete(h.Rooms, room.ID)
		}
		h.log.Warn("join rejected, room full", "room", room.ID, "client", c.ID)
		return ErrRoomFull
	}

	room.Members[c] = struct{}{}
	h.log.Info("client joined", "room", room.ID, "client", c.ID, "role", c.Role, "members", len(room.Members))
	return nil
}

// handleLeave removes the client from its room's member set. Leaving an
// already-removed connection is a no-op, so abnormal terminations that race
// with normal closes stay harmless.
func (h *Hub) handleLeave(c *Client) {
	room, ok := h.Rooms[c.RoomID]
	if !ok {
		return
	}
	if _, member := room.Members[c]; !member {
		return
	}

	delete(room.Members, c)
	close(c.Send)
	h.log.Info("client left", "room", room.ID, "client", c.ID, "members", len(room.Members))

	if len(room.Members) == 0 {
		delete(h.Rooms, room.ID)
		h.log.Info("room deleted", "room", room.ID)
	}
}

// handleFrame applies the relay contract: owner frames fan out verbatim to
// every other member, spectator frames are dropped silently, malformed
// payloads are dropped and logged.
func (h *Hub) handleFrame(f *frame) {
	c := f.sender

	if c.Role != RoleOwner {
		h.log.Debug("spectator frame dropped", "room", c.RoomID, "client", c.ID)
		return
	}

	if !json.Valid(f.payload) {
		h.log.Warn("malformed payload dropped", "room", c.RoomID, "client", c.ID, "bytes", len(f.payload))
		return
	}

	room, ok := h.Rooms[c.RoomID]
	if !ok {
		return
	}

	for member := range room.Members {
		if member == c {
			continue
		}
		select {
		case member.Send <- f.payload:
		default:
			// Best-effort delivery: a backed-up member loses this
			// frame instead of stalling the rest of the room.
			h.log.Warn("slow member, frame dropped", "room", room.ID, "client", member.ID)
		}
	}
}

func (h *Hub) handleStats() []RoomStats {
	return lo.MapToSlice(h.Rooms, func(id string, room *Room) RoomStats {
		owners := lo.CountBy(lo.Keys(room.Members), func(c *Client) bool {
			return c.Role == RoleOwner
		})
		return RoomStats{ID: id, Members: len(room.Members), Owners: owners}
	})
}
