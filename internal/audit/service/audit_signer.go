package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	cryptoDomain "github.com/allisson/credstore/internal/crypto/domain"
)

// signingKeyInfo versions the HKDF derivation so the algorithm can change later.
const signingKeyInfo = "audit-record-signing-v1"

// ErrSigningKeyRequired indicates an empty audit signing key.
var ErrSigningKeyRequired = errors.New("audit signing key is required")

type auditSigner struct {
	signingKey []byte
}

// NewAuditSigner derives the record signing key from key with HKDF-SHA256.
func NewAuditSigner(key []byte) (AuditSigner, error) {
	if len(key) == 0 {
		return nil, ErrSigningKeyRequired
	}

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte(signingKeyInfo)), signingKey); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	return &auditSigner{signingKey: signingKey}, nil
}

// canonicalizeRecord converts the record to the byte representation that is signed.
// Format: request_id || credential_name || operation || actor || path || method ||
// success || status_code || events || created_at, variable-length fields prefixed
// with their length.
func canonicalizeRecord(record *auditDomain.AuditRecord) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = appendLengthPrefixed(buf, []byte(record.RequestID))
	buf = appendLengthPrefixed(buf, []byte(record.CredentialName))
	buf = appendLengthPrefixed(buf, []byte(record.Operation))
	buf = appendLengthPrefixed(buf, []byte(record.Actor))
	buf = appendLengthPrefixed(buf, []byte(record.Path))
	buf = appendLengthPrefixed(buf, []byte(record.Method))

	if record.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(record.StatusCode)) //nolint:gosec // HTTP status codes

	var events []byte
	if len(record.Events) > 0 {
		var err error
		events, err = json.Marshal(record.Events)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal events: %w", err)
		}
	}
	buf = appendLengthPrefixed(buf, events)

	buf = binary.BigEndian.AppendUint64(buf, uint64(record.CreatedAt.UnixNano())) //nolint:gosec // timestamps after 1970

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	if len(data) > 0xFFFFFFFF {
		panic("data length exceeds uint32 max (4GB)")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data))) //nolint:gosec // checked above
	return append(buf, data...)
}

// Sign generates the HMAC-SHA256 signature for the record.
func (a *auditSigner) Sign(record *auditDomain.AuditRecord) ([]byte, error) {
	canonical, err := canonicalizeRecord(record)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize record: %w", err)
	}
	defer cryptoDomain.Zero(canonical)

	mac := hmac.New(sha256.New, a.signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the record signature in constant time.
func (a *auditSigner) Verify(record *auditDomain.AuditRecord) error {
	expected, err := a.Sign(record)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(record.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}
