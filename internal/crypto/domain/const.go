package domain

import (
	"fmt"
	"strings"
)

// Algorithm represents the AEAD algorithm used to encrypt credential values.
//
// Both algorithms take a 256-bit key, a 12-byte nonce and append a 16-byte tag.
// AESGCM is the better choice on CPUs with AES-NI, ChaCha20 elsewhere.
type Algorithm string

const (
	// AESGCM represents AES-256-GCM.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents ChaCha20-Poly1305.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the size in bytes of every encryption key.
const KeySize = 32

// ParseAlgorithm converts a configuration value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch alg := Algorithm(strings.ToLower(strings.TrimSpace(s))); alg {
	case AESGCM, ChaCha20:
		return alg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}
