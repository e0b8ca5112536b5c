package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	"github.com/allisson/credstore/internal/metrics"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// permissionUseCaseWithMetrics decorates PermissionUseCase with metrics instrumentation.
type permissionUseCaseWithMetrics struct {
	next    PermissionUseCase
	metrics metrics.BusinessMetrics
}

// NewPermissionUseCaseWithMetrics wraps a PermissionUseCase with metrics recording.
func NewPermissionUseCaseWithMetrics(useCase PermissionUseCase, m metrics.BusinessMetrics) PermissionUseCase {
	return &permissionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *permissionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordOperation(ctx, "permission", operation, status)
	p.metrics.RecordDuration(ctx, "permission", operation, time.Since(start), status)
}

// GetACL records metrics for ACL reads.
func (p *permissionUseCaseWithMetrics) GetACL(
	ctx context.Context,
	actor, credentialName string,
	events auditDomain.EventRecorder,
) ([]*permissionDomain.AccessControlEntry, error) {
	start := time.Now()
	entries, err := p.next.GetACL(ctx, actor, credentialName, events)
	p.record(ctx, "acl_get", start, err)
	return entries, err
}

// SetACL records metrics for ACL updates.
func (p *permissionUseCaseWithMetrics) SetACL(
	ctx context.Context,
	actor, credentialName string,
	entries []*permissionDomain.AccessControlEntry,
	events auditDomain.EventRecorder,
) ([]*permissionDomain.AccessControlEntry, error) {
	start := time.Now()
	acl, err := p.next.SetACL(ctx, actor, credentialName, entries, events)
	p.record(ctx, "acl_set", start, err)
	return acl, err
}

// DeleteACLEntry records metrics for ACL entry deletions.
func (p *permissionUseCaseWithMetrics) DeleteACLEntry(
	ctx context.Context,
	actor, credentialName, entryActor string,
	events auditDomain.EventRecorder,
) error {
	start := time.Now()
	err := p.next.DeleteACLEntry(ctx, actor, credentialName, entryActor, events)
	p.record(ctx, "acl_delete", start, err)
	return err
}

func (p *permissionUseCaseWithMetrics) Save(
	ctx context.Context,
	credentialName string,
	entries []*permissionDomain.AccessControlEntry,
) error {
	return p.next.Save(ctx, credentialName, entries)
}

func (p *permissionUseCaseWithMetrics) DeleteAll(ctx context.Context, credentialName string) error {
	return p.next.DeleteAll(ctx, credentialName)
}
