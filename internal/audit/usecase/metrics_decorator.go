package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
	"github.com/allisson/credstore/internal/metrics"
)

// auditedOperationExecutorWithMetrics decorates AuditedOperationExecutor with metrics.
type auditedOperationExecutorWithMetrics struct {
	next    AuditedOperationExecutor
	metrics metrics.BusinessMetrics
}

// NewAuditedOperationExecutorWithMetrics wraps an AuditedOperationExecutor with metrics
// recording. Status is "success", "failure" for audited failures, or
// "audit_unavailable".
func NewAuditedOperationExecutorWithMetrics(
	executor AuditedOperationExecutor,
	m metrics.BusinessMetrics,
) AuditedOperationExecutor {
	return &auditedOperationExecutorWithMetrics{next: executor, metrics: m}
}

// PerformWithAuditing records metrics for audited operations.
func (a *auditedOperationExecutorWithMetrics) PerformWithAuditing(
	ctx context.Context,
	operation auditDomain.OperationCode,
	action Action,
) (*auditDomain.Result, error) {
	start := time.Now()
	result, err := a.next.PerformWithAuditing(ctx, operation, action)

	status := "success"
	switch {
	case apperrors.Is(err, auditDomain.ErrAuditUnavailable):
		status = "audit_unavailable"
	case err != nil, result != nil && !result.Succeeded():
		status = "failure"
	}

	a.metrics.RecordOperation(ctx, "audit", string(operation), status)
	a.metrics.RecordDuration(ctx, "audit", string(operation), time.Since(start), status)

	// Any outcome other than audit_unavailable has exactly one committed record.
	if status == "audit_unavailable" {
		a.metrics.RecordAuditFailure(ctx, string(operation))
	} else {
		a.metrics.RecordAuditRecord(ctx, string(operation), status == "success")
	}

	return result, err
}
