package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 24-character hex string, used as the surrogate key
// for users, rooms, and bookings and as the generated request id.
func NewID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
