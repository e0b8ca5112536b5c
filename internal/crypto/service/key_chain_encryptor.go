package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// KeyChainEncryptor implements Encryptor over an EncryptionKeyChain.
type KeyChainEncryptor struct {
	chain       *cryptoDomain.EncryptionKeyChain
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewKeyChainEncryptor creates an Encryptor that writes with alg under the chain's
// active key.
func NewKeyChainEncryptor(
	chain *cryptoDomain.EncryptionKeyChain,
	aeadManager AEADManager,
	alg cryptoDomain.Algorithm,
) *KeyChainEncryptor {
	return &KeyChainEncryptor{chain: chain, aeadManager: aeadManager, algorithm: alg}
}

// Encrypt seals plaintext with the active key.
func (e *KeyChainEncryptor) Encrypt(plaintext, aad []byte) (*EncryptedValue, error) {
	key, ok := e.chain.Active()
	if !ok {
		return nil, cryptoDomain.ErrActiveEncryptionKeyNotFound
	}

	cipher, err := e.aeadManager.CreateCipher(key.Key, e.algorithm)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt value: %w", err)
	}

	return &EncryptedValue{KeyID: key.ID, Ciphertext: ciphertext, Nonce: nonce}, nil
}

// Decrypt opens value with the key it was written under. Authentication failures are
// reported as ErrDecryptionFailed.
func (e *KeyChainEncryptor) Decrypt(value *EncryptedValue, aad []byte) ([]byte, error) {
	key, ok := e.chain.Get(value.KeyID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cryptoDomain.ErrEncryptionKeyNotFound, value.KeyID)
	}

	cipher, err := e.aeadManager.CreateCipher(key.Key, e.algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(value.Ciphertext, value.Nonce, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
