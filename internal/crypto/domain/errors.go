package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// Cryptographic errors.
var (
	// ErrUnsupportedAlgorithm indicates the configured encryption algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates an encryption key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a stored value could not be decrypted. The cause is
	// not disclosed.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrEncryptionKeysNotSet indicates ENCRYPTION_KEYS is empty.
	ErrEncryptionKeysNotSet = errors.New("ENCRYPTION_KEYS is not set")

	// ErrActiveEncryptionKeyIDNotSet indicates ACTIVE_ENCRYPTION_KEY_ID is empty.
	ErrActiveEncryptionKeyIDNotSet = errors.New("ACTIVE_ENCRYPTION_KEY_ID is not set")

	// ErrInvalidEncryptionKeysFormat indicates an ENCRYPTION_KEYS entry is not "id:base64key".
	ErrInvalidEncryptionKeysFormat = errors.New("invalid ENCRYPTION_KEYS format")

	// ErrInvalidEncryptionKeyBase64 indicates a key could not be base64-decoded.
	ErrInvalidEncryptionKeyBase64 = errors.New("invalid encryption key base64")

	// ErrActiveEncryptionKeyNotFound indicates the active key ID is not in the chain.
	ErrActiveEncryptionKeyNotFound = errors.New("active encryption key not found")

	// ErrEncryptionKeyNotFound indicates a stored value references a key missing from
	// the chain.
	ErrEncryptionKeyNotFound = errors.New("encryption key not found")

	// ErrUnsupportedKMSScheme indicates KMS_KEY_URI names a provider that is not linked in.
	ErrUnsupportedKMSScheme = errors.Wrap(errors.ErrInvalidInput, "unsupported KMS key URI scheme")

	// ErrKMSDecryptionFailed indicates a KMS-protected key could not be unwrapped.
	ErrKMSDecryptionFailed = errors.New("failed to decrypt encryption key with KMS")
)
