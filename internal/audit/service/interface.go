// Package service provides technical services for the audit trail: record signing and
// the security event log.
package service

import (
	"context"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

// AuditSigner signs audit records and verifies their signatures.
type AuditSigner interface {
	// Sign returns the HMAC-SHA256 signature of the record's canonical encoding.
	Sign(record *auditDomain.AuditRecord) ([]byte, error)

	// Verify returns ErrSignatureInvalid when the record's signature does not match.
	Verify(record *auditDomain.AuditRecord) error
}

// SecurityEventLogger appends security events to an external, non-transactional log.
type SecurityEventLogger interface {
	Log(ctx context.Context, event *auditDomain.SecurityEvent) error
}
