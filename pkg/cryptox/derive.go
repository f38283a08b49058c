package cryptox

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest APP_SECRET accepted for key derivation.
const MinSecretLength = 16

var ErrWeakSecret = errors.New("cryptox: secret too short")

// DeriveKey expands secret into a size-byte key bound to info using
// HKDF-SHA256. Different info strings give independent keys from the same
// deployment secret.
func DeriveKey(secret []byte, info string, size int) ([]byte, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	key := make([]byte, size)
	r := hkdf.New(sha256.New, secret, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
