package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomURLSafeString returns size bytes from crypto/rand encoded as unpadded base64url.
func RandomURLSafeString(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("[utils RandomURLSafeString] size must be positive, got %d", size)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("[utils RandomURLSafeString] read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomGenerator produces unguessable strings of a fixed byte length.
type RandomGenerator func(size int) (string, error)
