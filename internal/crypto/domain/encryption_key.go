package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// KMSKeeper unwraps encryption keys stored as KMS ciphertext. *secrets.Keeper from
// gocloud.dev implements it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// EncryptionKey is a 32-byte key used to encrypt credential values.
type EncryptionKey struct {
	ID  string
	Key []byte
}

// EncryptionKeyChain holds every configured encryption key with one designated as
// active. New values are encrypted with the active key; older keys stay available to
// decrypt values written before a rotation.
type EncryptionKeyChain struct {
	activeID string
	keys     sync.Map
}

// ActiveKeyID returns the ID of the key used for new encryptions.
func (c *EncryptionKeyChain) ActiveKeyID() string {
	return c.activeID
}

// Active returns the active key.
func (c *EncryptionKeyChain) Active() (*EncryptionKey, bool) {
	return c.Get(c.activeID)
}

// Get returns the key with the given ID.
func (c *EncryptionKeyChain) Get(id string) (*EncryptionKey, bool) {
	if key, ok := c.keys.Load(id); ok {
		return key.(*EncryptionKey), true
	}
	return nil, false
}

// Close zeroes every key and empties the chain.
func (c *EncryptionKeyChain) Close() {
	c.keys.Range(func(_, value any) bool {
		Zero(value.(*EncryptionKey).Key)
		return true
	})
	c.keys.Clear()
	c.activeID = ""
}

// LoadEncryptionKeyChain parses raw ("id1:base64key1,id2:base64key2") into a chain
// whose active key is activeID. When keeper is not nil every entry holds KMS
// ciphertext and is unwrapped before use.
func LoadEncryptionKeyChain(
	ctx context.Context,
	raw, activeID string,
	keeper KMSKeeper,
) (*EncryptionKeyChain, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEncryptionKeysNotSet
	}
	if activeID == "" {
		return nil, ErrActiveEncryptionKeyIDNotSet
	}

	chain := &EncryptionKeyChain{activeID: activeID}

	for part := range strings.SplitSeq(raw, ",") {
		id, encoded, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || id == "" {
			chain.Close()
			return nil, fmt.Errorf("%w: %q", ErrInvalidEncryptionKeysFormat, part)
		}

		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			chain.Close()
			return nil, fmt.Errorf("%w for %s: %v", ErrInvalidEncryptionKeyBase64, id, err)
		}

		key := decoded
		if keeper != nil {
			key, err = keeper.Decrypt(ctx, decoded)
			if err != nil {
				chain.Close()
				return nil, fmt.Errorf("%w for %s: %v", ErrKMSDecryptionFailed, id, err)
			}
		}

		if len(key) != KeySize {
			Zero(key)
			chain.Close()
			return nil, fmt.Errorf(
				"%w: encryption key %s must be %d bytes, got %d",
				ErrInvalidKeySize,
				id,
				KeySize,
				len(key),
			)
		}
		chain.keys.Store(id, &EncryptionKey{ID: id, Key: key})
	}

	if _, ok := chain.Get(activeID); !ok {
		chain.Close()
		return nil, fmt.Errorf("%w: ACTIVE_ENCRYPTION_KEY_ID=%s", ErrActiveEncryptionKeyNotFound, activeID)
	}

	return chain, nil
}

// Zero overwrites key material once it is no longer needed.
func Zero(b []byte) {
	clear(b)
}
