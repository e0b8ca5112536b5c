// Package domain defines the credential model: named, versioned secrets of a fixed kind,
// the generation parameters needed to reissue them and the per-kind dispatch used to
// apply kind-specific behavior.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// Credential is one immutable version of a named secret.
type Credential struct {
	// ID identifies this version.
	ID uuid.UUID
	// Name is shared by every version and compared case-insensitively.
	Name string
	// Kind is fixed across all versions of Name.
	Kind Kind
	// EncryptionKeyID names the key from the encryption key chain that sealed the value.
	EncryptionKeyID string
	// Ciphertext is the AEAD-encrypted JSON encoding of the CredentialValue.
	Ciphertext []byte
	// Nonce is the AEAD nonce used for Ciphertext.
	Nonce []byte
	// GenerationParameters is nil when the value was supplied by the user.
	GenerationParameters *GenerationParameters
	// SignerName is the CA credential name for certificates signed by a stored CA.
	SignerName string
	// Value holds the decrypted material in memory only.
	Value *CredentialValue `json:"-"`
	// VersionCreatedAt orders versions; the greatest is the most recent.
	VersionCreatedAt time.Time
}

// IsGenerated reports whether the value was machine-generated.
func (c *Credential) IsGenerated() bool {
	return c.GenerationParameters != nil
}

// CredentialValue is the plaintext material of a credential version. Fields are
// populated per kind: Value for value and password credentials, CA/Certificate/
// PrivateKey for certificates, PublicKey/PrivateKey for ssh and rsa key pairs.
type CredentialValue struct {
	Value       string `json:"value,omitempty"`
	CA          string `json:"ca,omitempty"`
	Certificate string `json:"certificate,omitempty"`
	PublicKey   string `json:"public_key,omitempty"`
	PrivateKey  string `json:"private_key,omitempty"`
}

// Fields returns the populated fields of the value keyed by their JSON names.
func (v *CredentialValue) Fields() map[string]any {
	fields := map[string]any{}
	for key, value := range map[string]string{
		"value":       v.Value,
		"ca":          v.CA,
		"certificate": v.Certificate,
		"public_key":  v.PublicKey,
		"private_key": v.PrivateKey,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

// SSHPublicKey parses the public key of an ssh credential value.
func (v *CredentialValue) SSHPublicKey() (*SSHPublicKey, error) {
	return ParseSSHPublicKey(v.PublicKey)
}

// NormalizeName trims the name and makes it absolute. Names must not be empty, end with
// a slash or contain empty path segments.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	if strings.HasSuffix(name, "/") || strings.Contains(name, "//") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// SetRequest stores a user-supplied value. It is never persisted.
type SetRequest struct {
	Name                  string
	Kind                  Kind
	Value                 *CredentialValue
	Overwrite             bool
	AdditionalPermissions []*permissionDomain.AccessControlEntry
}

var errValueRequired = errors.New("value is required")

var valueValidation = Mapping[*CredentialValue, error]{
	Value: func(_ Kind, v *CredentialValue) error {
		if v.Value == "" {
			return errValueRequired
		}
		return nil
	},
	Password: func(_ Kind, v *CredentialValue) error {
		if v.Value == "" {
			return errValueRequired
		}
		return nil
	},
	Certificate: func(_ Kind, v *CredentialValue) error {
		if v.Certificate == "" && v.CA == "" {
			return errors.New("certificate or ca is required")
		}
		return nil
	},
	SSH: func(_ Kind, v *CredentialValue) error {
		if v.PublicKey == "" && v.PrivateKey == "" {
			return errors.New("public_key or private_key is required")
		}
		if v.PublicKey != "" {
			if _, err := v.SSHPublicKey(); err != nil {
				return err
			}
		}
		return nil
	},
	RSA: func(_ Kind, v *CredentialValue) error {
		if v.PublicKey == "" && v.PrivateKey == "" {
			return errors.New("public_key or private_key is required")
		}
		return nil
	},
}

// ValidateValue checks that value carries the fields kind requires.
func ValidateValue(kind Kind, value *CredentialValue) error {
	if value == nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, errValueRequired.Error())
	}
	validationErr, err := Apply(kind, valueValidation, value)
	if err != nil {
		return err
	}
	if validationErr != nil {
		if apperrors.Is(validationErr, apperrors.ErrInvalidInput) {
			return validationErr
		}
		return apperrors.Wrap(apperrors.ErrInvalidInput, validationErr.Error())
	}
	return nil
}
