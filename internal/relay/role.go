package relay

// Role is a connection's declared part in a room. It is fixed at join time
// and never negotiated by the server.
type Role string

const (
	// RoleOwner marks the connection whose messages are broadcast.
	RoleOwner Role = "owner"

	// RoleSpectator marks a read-only connection.
	RoleSpectator Role = "spectator"
)

// ParseRole maps a client-declared role string to a Role. Anything that is
// not exactly "owner" is a spectator, so a confused client can at worst
// silence itself.
func ParseRole(s string) Role {
	if s == string(RoleOwner) {
		return RoleOwner
	}
	return RoleSpectator
}
