// Package service generates credential values and seals them for storage.
package service

import (
	"context"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

// CertificateAuthorityLoader resolves the CA credential a certificate is signed with.
// Implementations enforce that actor may read the CA and report any failure as
// ErrCredentialNotFound.
type CertificateAuthorityLoader interface {
	LoadCertificateAuthority(ctx context.Context, actor, name string) (*credentialDomain.CredentialValue, error)
}

// CredentialGenerator produces a new value for a normalized generation request.
type CredentialGenerator interface {
	Generate(
		ctx context.Context,
		request *credentialDomain.GenerationRequest,
		actor string,
	) (*credentialDomain.CredentialValue, error)
}

// ValueCipher encrypts credential values bound to the credential name.
type ValueCipher interface {
	// Seal encrypts value for name and stores the ciphertext on credential.
	Seal(credential *credentialDomain.Credential, value *credentialDomain.CredentialValue) error

	// Open decrypts the value of credential.
	Open(credential *credentialDomain.Credential) (*credentialDomain.CredentialValue, error)
}
