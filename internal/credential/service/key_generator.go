package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

func generateRSAKeyPair(params *credentialDomain.GenerationParameters) (*credentialDomain.CredentialValue, error) {
	key, err := rsa.GenerateKey(rand.Reader, params.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rsa public key: %w", err)
	}

	return &credentialDomain.CredentialValue{
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})),
		PrivateKey: encodePrivateKey(key),
	}, nil
}

// generateSSHKeyPair returns an OpenSSH authorized-key public key, with the comment
// appended when set, and the private key in OpenSSH PEM form.
func generateSSHKeyPair(params *credentialDomain.GenerationParameters) (*credentialDomain.CredentialValue, error) {
	key, err := rsa.GenerateKey(rand.Reader, params.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ssh key: %w", err)
	}

	publicKey, err := ssh.NewPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ssh public key: %w", err)
	}
	authorized := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(publicKey)))
	if params.SSHComment != "" {
		authorized += " " + params.SSHComment
	}

	block, err := ssh.MarshalPrivateKey(key, params.SSHComment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ssh private key: %w", err)
	}

	return &credentialDomain.CredentialValue{
		PublicKey:  authorized,
		PrivateKey: string(pem.EncodeToMemory(block)),
	}, nil
}

func encodePrivateKey(key *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}
