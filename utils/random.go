// utils/random.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
)

// GenerateRandomString returns n random hex characters (invoice numbers)
func GenerateRandomString(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		panic("failed to read random bytes")
	}
	return hex.EncodeToString(b)[:n]
}

// GenerateResetToken returns an opaque URL-safe token for password resets
func GenerateResetToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("failed to read random bytes")
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
