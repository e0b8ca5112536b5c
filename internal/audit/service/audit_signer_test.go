package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

func newTestRecord() *auditDomain.AuditRecord {
	return &auditDomain.AuditRecord{
		RequestID:      "0190a3c4-1b2c-7d3e-8f40-123456789abc",
		CredentialName: "/prod/db/password",
		Operation:      auditDomain.CredentialUpdate,
		Actor:          "uaa-user:alice",
		Path:           "/api/v1/regenerate",
		Method:         "POST",
		Success:        true,
		StatusCode:     200,
		Events: []auditDomain.EventParameters{
			{Operation: auditDomain.CredentialUpdate, CredentialName: "/prod/db/password"},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func newTestSigner(t *testing.T) AuditSigner {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	signer, err := NewAuditSigner(key)
	require.NoError(t, err)
	return signer
}

func TestNewAuditSigner(t *testing.T) {
	t.Run("Error_EmptyKey", func(t *testing.T) {
		signer, err := NewAuditSigner(nil)
		assert.ErrorIs(t, err, ErrSigningKeyRequired)
		assert.Nil(t, signer)
	})
}

func TestAuditSigner_SignAndVerify(t *testing.T) {
	signer := newTestSigner(t)
	record := newTestRecord()

	signature, err := signer.Sign(record)
	require.NoError(t, err)
	assert.Len(t, signature, 32, "HMAC-SHA256 should produce 32-byte signature")

	record.Signature = signature
	assert.NoError(t, signer.Verify(record))
}

func TestAuditSigner_VerifyDetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(r *auditDomain.AuditRecord)
	}{
		{"credential name", func(r *auditDomain.AuditRecord) { r.CredentialName = "/prod/other" }},
		{"actor", func(r *auditDomain.AuditRecord) { r.Actor = "uaa-user:mallory" }},
		{"success flag", func(r *auditDomain.AuditRecord) { r.Success = false }},
		{"status code", func(r *auditDomain.AuditRecord) { r.StatusCode = 404 }},
		{"events", func(r *auditDomain.AuditRecord) { r.Events = nil }},
		{"timestamp", func(r *auditDomain.AuditRecord) { r.CreatedAt = r.CreatedAt.Add(time.Second) }},
	}

	signer := newTestSigner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := newTestRecord()
			signature, err := signer.Sign(record)
			require.NoError(t, err)
			record.Signature = signature

			tt.tamper(record)

			assert.ErrorIs(t, signer.Verify(record), auditDomain.ErrSignatureInvalid)
		})
	}
}

func TestAuditSigner_DifferentKeysDisagree(t *testing.T) {
	record := newTestRecord()
	signature, err := newTestSigner(t).Sign(record)
	require.NoError(t, err)
	record.Signature = signature

	assert.ErrorIs(t, newTestSigner(t).Verify(record), auditDomain.ErrSignatureInvalid)
}

func TestCanonicalizeRecord_FieldBoundaries(t *testing.T) {
	a := newTestRecord()
	a.Actor, a.Path = "ab", "c"
	b := newTestRecord()
	b.CreatedAt = a.CreatedAt
	b.Actor, b.Path = "a", "bc"

	ca, err := canonicalizeRecord(a)
	require.NoError(t, err)
	cb, err := canonicalizeRecord(b)
	require.NoError(t, err)

	assert.NotEqual(t, ca, cb)
}
