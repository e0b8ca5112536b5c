// Package usecase implements the audited execution of credential operations and the
// verification of the resulting audit trail.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

// AuditRecordRepository persists audit records together with their event annotations.
type AuditRecordRepository interface {
	// Create stores the record and its events using the transaction in ctx, if any.
	Create(ctx context.Context, record *auditDomain.AuditRecord) error

	// ListByTimeRange returns records with start <= created_at <= end, oldest first.
	ListByTimeRange(ctx context.Context, start, end time.Time, offset, limit int) ([]*auditDomain.AuditRecord, error)
}

// Action is an operation run under auditing. It uses the builder to name the credential
// it targets and to add event annotations, and runs with the audit transaction in ctx.
type Action func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error)

// AuditedOperationExecutor couples an action with the durable audit record of that
// action and with the security event log.
type AuditedOperationExecutor interface {
	// PerformWithAuditing runs action and records its outcome.
	//
	// A successful action (nil error and a 2xx result) and its audit record commit in one
	// transaction. A failed action is rolled back and its failure record is committed in a
	// separate transaction. Once the record is committed a security event is logged and
	// the action's own result and error are returned unchanged. When the record cannot be
	// persisted or committed every effect is rolled back, no security event is logged and
	// ErrAuditUnavailable is returned.
	PerformWithAuditing(
		ctx context.Context,
		operation auditDomain.OperationCode,
		action Action,
	) (*auditDomain.Result, error)
}

// VerificationReport summarizes a signature verification run.
type VerificationReport struct {
	TotalChecked   int64
	SignedCount    int64
	UnsignedCount  int64
	ValidCount     int64
	InvalidCount   int64
	InvalidRecords []uuid.UUID
}

// AuditRecordUseCase reads and verifies the audit trail.
type AuditRecordUseCase interface {
	// VerifyBatch checks the signature of every record created in [start, end].
	VerifyBatch(ctx context.Context, start, end time.Time) (*VerificationReport, error)
}
