package domain

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/cryptobyte"
)

// SSHPublicKey holds the metadata derived from an OpenSSH public key line.
type SSHPublicKey struct {
	// KeyType is the leading type marker (e.g., "ssh-rsa"). It is not validated.
	KeyType string
	// KeyLength is the bit length of the RSA modulus.
	KeyLength int
	// Comment is the optional trailing token, empty when absent.
	Comment string
}

// ParseSSHPublicKey decodes a public key of the form "<type> <base64-body> [comment]".
//
// The body is read as the RFC 4253 section 6.6 "ssh-rsa" layout: three consecutive
// fields, each a 4-byte big-endian length followed by that many bytes, holding the key
// type, the public exponent and the modulus. The modulus bit length, read as an
// unsigned integer, is the key length.
//
// Returns ErrInvalidSSHPublicKey when the line has fewer than two tokens, the body is
// not valid base64, or the binary layout is truncated.
func ParseSSHPublicKey(publicKey string) (*SSHPublicKey, error) {
	tokens := strings.Split(strings.TrimSpace(publicKey), " ")
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: expected '<type> <body> [comment]'", ErrInvalidSSHPublicKey)
	}

	blob, err := base64.StdEncoding.DecodeString(tokens[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSSHPublicKey, err)
	}

	var keyType, exponent, modulus cryptobyte.String
	input := cryptobyte.String(blob)
	if !readField(&input, &keyType) ||
		!readField(&input, &exponent) ||
		!readField(&input, &modulus) {
		return nil, fmt.Errorf("%w: truncated key body", ErrInvalidSSHPublicKey)
	}

	comment := ""
	if len(tokens) > 2 {
		comment = tokens[2]
	}

	return &SSHPublicKey{
		KeyType:   tokens[0],
		KeyLength: new(big.Int).SetBytes(modulus).BitLen(),
		Comment:   comment,
	}, nil
}

// readField reads one uint32 length-prefixed field from s into out.
func readField(s *cryptobyte.String, out *cryptobyte.String) bool {
	var n uint32
	if !s.ReadUint32(&n) {
		return false
	}
	return s.ReadBytes((*[]byte)(out), int(n))
}
