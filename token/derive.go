package token

import (
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const derivedKeyLength = 32

// Key purposes. Each purpose yields an independent key from the same secret.
const (
	PurposeSessionCookie = "session-cookie-v1"
)

// DeriveKey expands secret into a 256-bit key bound to purpose.
func DeriveKey(secret, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret is required")
	}
	if purpose == "" {
		return nil, errors.New("purpose is required")
	}

	key := make([]byte, derivedKeyLength)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
