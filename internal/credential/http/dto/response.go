package dto

import (
	"time"

	"golang.org/x/crypto/ssh"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
)

// CertificateValue is the value of a certificate credential.
type CertificateValue struct {
	CA          string `json:"ca,omitempty"`
	Certificate string `json:"certificate,omitempty"`
	PrivateKey  string `json:"private_key,omitempty"`
}

// SSHValue is the value of an ssh credential.
type SSHValue struct {
	PublicKey            string `json:"public_key,omitempty"`
	PrivateKey           string `json:"private_key,omitempty"`
	PublicKeyFingerprint string `json:"public_key_fingerprint,omitempty"`
}

// RSAValue is the value of an rsa credential.
type RSAValue struct {
	PublicKey  string `json:"public_key,omitempty"`
	PrivateKey string `json:"private_key,omitempty"`
}

// valueEncoders renders a value in the shape of each kind.
var valueEncoders = credentialDomain.Mapping[*credentialDomain.CredentialValue, any]{
	Value:    func(_ credentialDomain.Kind, v *credentialDomain.CredentialValue) any { return v.Value },
	Password: func(_ credentialDomain.Kind, v *credentialDomain.CredentialValue) any { return v.Value },
	Certificate: func(_ credentialDomain.Kind, v *credentialDomain.CredentialValue) any {
		return CertificateValue{CA: v.CA, Certificate: v.Certificate, PrivateKey: v.PrivateKey}
	},
	SSH: func(_ credentialDomain.Kind, v *credentialDomain.CredentialValue) any {
		return SSHValue{
			PublicKey:            v.PublicKey,
			PrivateKey:           v.PrivateKey,
			PublicKeyFingerprint: fingerprint(v.PublicKey),
		}
	},
	RSA: func(_ credentialDomain.Kind, v *credentialDomain.CredentialValue) any {
		return RSAValue{PublicKey: v.PublicKey, PrivateKey: v.PrivateKey}
	},
}

// fingerprint returns the SHA-256 fingerprint of an authorized-key line, or "" when it
// cannot be parsed.
func fingerprint(publicKey string) string {
	if publicKey == "" {
		return ""
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKey))
	if err != nil {
		return ""
	}
	return ssh.FingerprintSHA256(key)
}

// CredentialResponse represents a credential version in API responses.
// SECURITY: Value holds plaintext and must be transmitted over HTTPS.
type CredentialResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Value            any       `json:"value"`
	VersionCreatedAt time.Time `json:"version_created_at"`
}

// MapCredentialToResponse converts a credential version to an API response.
func MapCredentialToResponse(credential *credentialDomain.Credential) CredentialResponse {
	response := CredentialResponse{
		ID:               credential.ID.String(),
		Name:             credential.Name,
		Type:             string(credential.Kind),
		VersionCreatedAt: credential.VersionCreatedAt,
	}
	if credential.Value != nil {
		response.Value, _ = credentialDomain.Apply(credential.Kind, valueEncoders, credential.Value)
	}
	return response
}

// BulkRegenerateResponse lists the outcome of a bulk regeneration.
type BulkRegenerateResponse struct {
	RegeneratedCredentials []string `json:"regenerated_credentials"`
	FailedCredentials      []string `json:"failed_credentials"`
}

// MapBulkRegenerateResult converts a bulk regeneration result to an API response.
func MapBulkRegenerateResult(result *credentialUseCase.BulkRegenerateResult) BulkRegenerateResponse {
	return BulkRegenerateResponse{
		RegeneratedCredentials: result.Regenerated,
		FailedCredentials:      result.Failed,
	}
}
