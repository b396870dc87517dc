// Package keys turns command-line key material into AES-128 keys.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	aesmodes "github.com/jedisct1/go-aes-modes"
)

// DefaultIterations is the PBKDF2 iteration count used by the CLI.
const DefaultIterations = 100_000

// ErrNoKey is returned when neither a key nor a passphrase is supplied.
var ErrNoKey = errors.New("keys: no key or passphrase given")

// Parse decodes a hex key of exactly aesmodes.KeySize bytes.
func Parse(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("hex.DecodeString() failed: %w", err)
	}
	if len(key) != aesmodes.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", aesmodes.ErrInvalidKeyLength, len(key), aesmodes.KeySize)
	}
	return key, nil
}

// FromPassphrase derives a key with PBKDF2-HMAC-SHA256.
func FromPassphrase(passphrase string, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, aesmodes.KeySize, sha256.New)
}

// Resolve returns the hex key when set, otherwise the passphrase-derived key.
func Resolve(hexKey, passphrase, hexSalt string, iterations int) ([]byte, error) {
	if hexKey != "" {
		return Parse(hexKey)
	}
	if passphrase == "" {
		return nil, ErrNoKey
	}
	salt, err := hex.DecodeString(hexSalt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	return FromPassphrase(passphrase, salt, iterations), nil
}
