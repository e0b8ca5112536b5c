package domain

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/ssh"
)

// buildKeyBody encodes the three length-prefixed fields of an ssh-rsa public key.
func buildKeyBody(t *testing.T, keyType string, exponent, modulus []byte) string {
	t.Helper()
	var b cryptobyte.Builder
	for _, field := range [][]byte{[]byte(keyType), exponent, modulus} {
		b.AddUint32LengthPrefixed(func(child *cryptobyte.Builder) {
			child.AddBytes(field)
		})
	}
	body, err := b.Bytes()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(body)
}

func TestParseSSHPublicKey(t *testing.T) {
	t.Run("Success_GeneratedKeyRoundTrip", func(t *testing.T) {
		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
		require.NoError(t, err)

		line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(publicKey))) + " deploy@ci"

		parsed, err := ParseSSHPublicKey(line)
		require.NoError(t, err)
		assert.Equal(t, "ssh-rsa", parsed.KeyType)
		assert.Equal(t, 2048, parsed.KeyLength)
		assert.Equal(t, "deploy@ci", parsed.Comment)
	})

	t.Run("Success_LeadingZeroSignByteIgnored", func(t *testing.T) {
		modulus := make([]byte, 1+128)
		modulus[1] = 0x80
		body := buildKeyBody(t, "ssh-rsa", []byte{0x01, 0x00, 0x01}, modulus)

		parsed, err := ParseSSHPublicKey("ssh-rsa " + body + " comment")
		require.NoError(t, err)
		assert.Equal(t, 1024, parsed.KeyLength)
		assert.Equal(t, "comment", parsed.Comment)
	})

	t.Run("Success_SignificantBitsOnly", func(t *testing.T) {
		body := buildKeyBody(t, "ssh-rsa", []byte{0x03}, []byte{0x00, 0x01, 0xff})

		parsed, err := ParseSSHPublicKey("ssh-rsa " + body)
		require.NoError(t, err)
		assert.Equal(t, 9, parsed.KeyLength)
	})

	t.Run("Success_NoCommentYieldsEmptyString", func(t *testing.T) {
		body := buildKeyBody(t, "ssh-rsa", []byte{0x01, 0x00, 0x01}, []byte{0xff, 0xff})

		parsed, err := ParseSSHPublicKey("ssh-rsa " + body)
		require.NoError(t, err)
		assert.Equal(t, "", parsed.Comment)
		assert.Equal(t, 16, parsed.KeyLength)
	})

	t.Run("Error_MissingBody", func(t *testing.T) {
		parsed, err := ParseSSHPublicKey("ssh-rsa")
		assert.ErrorIs(t, err, ErrInvalidSSHPublicKey)
		assert.Nil(t, parsed)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		_, err := ParseSSHPublicKey("ssh-rsa !!notbase64!! comment")
		assert.ErrorIs(t, err, ErrInvalidSSHPublicKey)
	})

	t.Run("Error_TruncatedBody", func(t *testing.T) {
		body := buildKeyBody(t, "ssh-rsa", []byte{0x01, 0x00, 0x01}, make([]byte, 64))
		raw, err := base64.StdEncoding.DecodeString(body)
		require.NoError(t, err)
		truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)-10])

		_, err = ParseSSHPublicKey("ssh-rsa " + truncated)
		assert.ErrorIs(t, err, ErrInvalidSSHPublicKey)
	})

	t.Run("Error_MissingModulusField", func(t *testing.T) {
		var b cryptobyte.Builder
		b.AddUint32LengthPrefixed(func(child *cryptobyte.Builder) { child.AddBytes([]byte("ssh-ed25519")) })
		b.AddUint32LengthPrefixed(func(child *cryptobyte.Builder) { child.AddBytes(make([]byte, 32)) })
		body, err := b.Bytes()
		require.NoError(t, err)

		_, err = ParseSSHPublicKey("ssh-ed25519 " + base64.StdEncoding.EncodeToString(body))
		assert.ErrorIs(t, err, ErrInvalidSSHPublicKey)
	})
}
