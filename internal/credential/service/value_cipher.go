package service

import (
	"encoding/json"
	"strings"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
	cryptoService "github.com/allisson/credstore/internal/crypto/service"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// valueCipher seals the JSON encoding of a value. The lowercased credential name is
// the associated data, so a ciphertext cannot be moved to another name.
type valueCipher struct {
	encryptor cryptoService.Encryptor
}

func (v *valueCipher) Seal(credential *credentialDomain.Credential, value *credentialDomain.CredentialValue) error {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential value")
	}
	defer cryptoDomain.Zero(plaintext)

	encrypted, err := v.encryptor.Encrypt(plaintext, associatedData(credential.Name))
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt credential value")
	}

	credential.EncryptionKeyID = encrypted.KeyID
	credential.Ciphertext = encrypted.Ciphertext
	credential.Nonce = encrypted.Nonce
	return nil
}

func (v *valueCipher) Open(credential *credentialDomain.Credential) (*credentialDomain.CredentialValue, error) {
	plaintext, err := v.encryptor.Decrypt(&cryptoService.EncryptedValue{
		KeyID:      credential.EncryptionKeyID,
		Ciphertext: credential.Ciphertext,
		Nonce:      credential.Nonce,
	}, associatedData(credential.Name))
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	var value credentialDomain.CredentialValue
	if err := json.Unmarshal(plaintext, &value); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential value")
	}
	return &value, nil
}

func associatedData(name string) []byte {
	return []byte(strings.ToLower(name))
}

// NewValueCipher creates a ValueCipher backed by encryptor.
func NewValueCipher(encryptor cryptoService.Encryptor) ValueCipher {
	return &valueCipher{encryptor: encryptor}
}
