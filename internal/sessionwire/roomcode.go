package sessionwire

import (
	"crypto/rand"
	"log"
	"math/big"
	"strings"
)

// Room codes are generated client-side; the relay accepts any identifier.
// The alphabet skips easily-confused characters (0/O, 1/I/L) because codes
// are meant to be read out loud.
const (
	roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// NewRoomCode returns a short random code for a new room, upper-case.
func NewRoomCode() string {
	var b strings.Builder
	for i := 0; i < roomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[randomIndex(len(roomCodeAlphabet))])
	}
	return b.String()
}

// ParseRoomCode canonicalizes a user-supplied room code. The relay accepts
// any identifier string; this only guards against obvious typos before
// dialing.
func ParseRoomCode(input string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(input))
	if code == "" || len(code) > 64 {
		return "", ErrBadRoomCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return "", ErrBadRoomCode
		}
	}
	return code, nil
}

// randomIndex returns a cryptographically secure random index for a slice of
// given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		log.Panic("Failed to generate random index:", err)
	}
	return int(n.Int64())
}
