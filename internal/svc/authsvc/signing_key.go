package authsvc

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SigningKeySize is the size in bytes of the derived token signing key.
const SigningKeySize = 32

// ErrEmptySecretKey is returned when no secret key is configured.
var ErrEmptySecretKey = errors.New("empty secret key")

//nolint:gochecknoglobals
var signingKeyInfo = []byte("homecase.session.v1")

// DeriveSigningKey derives the session token signing key from the configured secret.
// The same secret always yields the same key, so tokens survive restarts.
func DeriveSigningKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecretKey
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, signingKeyInfo)

	key := make([]byte, SigningKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return key, nil
}
