package relay

// Room is a named broadcast domain. Membership is an unordered set; the
// absence of a Room entry in the hub is equivalent to an empty room.
type Room struct {
	// ID is the canonical (upper-case) room identifier.
	ID string

	// Members is the set of connections currently joined.
	Members map[*Client]struct{}
}

func newRoom(id string) *Room {
	return &Room{
		ID:      id,
		Members: make(map[*Client]struct{}),
	}
}
