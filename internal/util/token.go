package util

import (
	"crypto/rand"
	"encoding/hex"
)

const resetTokenBytes = 24

// GenerateResetToken returns a hex-encoded random token for the password
// reset flow. 24 bytes of entropy, 48 characters on the wire.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
