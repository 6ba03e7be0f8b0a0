package tool

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func GenerateRandomUUID() string {
	return uuid.New().String()
}

// GenerateShortSessionID returns an 8 char hex id, short enough to type from a status link.
func GenerateShortSessionID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return GenerateRandomUUID()[:8]
	}
	return hex.EncodeToString(b)
}
