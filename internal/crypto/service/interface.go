// Package service provides the AEAD ciphers, KMS access and key chain encryption used
// to protect credential values at rest.
package service

import (
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EncryptedValue is a ciphertext together with what is needed to open it again.
type EncryptedValue struct {
	KeyID      string
	Ciphertext []byte
	Nonce      []byte
}

// Encryptor encrypts with the active key of a key chain and decrypts with whichever key
// a value was written under.
type Encryptor interface {
	Encrypt(plaintext, aad []byte) (*EncryptedValue, error)
	Decrypt(value *EncryptedValue, aad []byte) ([]byte, error)
}
