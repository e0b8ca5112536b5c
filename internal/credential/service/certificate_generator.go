package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"time"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

var (
	errNotCertificateAuthority     = errors.New("ca credential is not a certificate authority")
	errInvalidCertificateAuthority = errors.New("ca credential does not hold a certificate and private key")
)

// certificateGenerator issues X.509 certificates, self-signed or signed by a stored CA.
type certificateGenerator struct {
	caLoader CertificateAuthorityLoader
	now      func() time.Time
}

// generate returns loader errors unchanged and wraps every other failure in
// ErrGenerationFailed.
func (g *certificateGenerator) generate(
	ctx context.Context,
	params *credentialDomain.GenerationParameters,
	actor string,
) (*credentialDomain.CredentialValue, error) {
	var caValue *credentialDomain.CredentialValue
	if params.CA != "" {
		var err error
		if caValue, err = g.caLoader.LoadCertificateAuthority(ctx, actor, params.CA); err != nil {
			return nil, err
		}
	}

	value, err := g.issue(params, caValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", credentialDomain.ErrGenerationFailed, err)
	}
	return value, nil
}

func (g *certificateGenerator) issue(
	params *credentialDomain.GenerationParameters,
	caValue *credentialDomain.CredentialValue,
) (*credentialDomain.CredentialValue, error) {
	key, err := rsa.GenerateKey(rand.Reader, params.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate key: %w", err)
	}

	template, err := g.template(params)
	if err != nil {
		return nil, err
	}

	parent, signer := template, any(key)
	if caValue != nil {
		if parent, signer, err = parseAuthority(caValue); err != nil {
			return nil, err
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	certificate := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	ca := certificate
	if caValue != nil {
		ca = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: parent.Raw}))
	}

	return &credentialDomain.CredentialValue{
		CA:          ca,
		Certificate: certificate,
		PrivateKey:  encodePrivateKey(key),
	}, nil
}

func (g *certificateGenerator) template(params *credentialDomain.GenerationParameters) (*x509.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	notBefore := g.now().UTC()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:         params.CommonName,
			Organization:       nonEmpty(params.Organization),
			OrganizationalUnit: nonEmpty(params.OrganizationUnit),
			Locality:           nonEmpty(params.Locality),
			Province:           nonEmpty(params.State),
			Country:            nonEmpty(params.Country),
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(0, 0, params.Duration),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		BasicConstraintsValid: true,
		IsCA:                  params.IsCA,
	}

	if params.IsCA {
		template.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	} else {
		template.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}
	}

	for _, name := range params.AlternativeNames {
		if ip := net.ParseIP(name); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, name)
		}
	}

	return template, nil
}

// parseAuthority decodes the CA certificate and its private key.
func parseAuthority(value *credentialDomain.CredentialValue) (*x509.Certificate, any, error) {
	certBlock, _ := pem.Decode([]byte(value.Certificate))
	keyBlock, _ := pem.Decode([]byte(value.PrivateKey))
	if certBlock == nil || keyBlock == nil {
		return nil, nil, errInvalidCertificateAuthority
	}

	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errInvalidCertificateAuthority, err)
	}
	if !cert.IsCA {
		return nil, nil, errNotCertificateAuthority
	}

	var key any
	if key, err = x509.ParsePKCS1PrivateKey(keyBlock.Bytes); err != nil {
		if key, err = x509.ParsePKCS8PrivateKey(keyBlock.Bytes); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", errInvalidCertificateAuthority, err)
		}
	}
	return cert, key, nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
