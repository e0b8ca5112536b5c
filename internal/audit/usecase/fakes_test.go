package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	"github.com/allisson/credstore/internal/database"
)

// fakeTxKey carries the fake transaction in the context.
type fakeTxKey struct{}

// fakeTx buffers writes until commit.
type fakeTx struct {
	pending []func()
}

// fakeTxManager applies staged writes only when a transaction commits.
type fakeTxManager struct {
	calls            int
	commits          int
	rollbacks        int
	failCommitOnCall int
	failRollback     bool
}

func (m *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	tx := &fakeTx{}

	if err := fn(context.WithValue(ctx, fakeTxKey{}, tx)); err != nil {
		m.rollbacks++
		if m.failRollback {
			return errors.Join(err, fmt.Errorf("%w: connection lost", database.ErrRollback))
		}
		return err
	}

	if m.failCommitOnCall == m.calls {
		m.rollbacks++
		return fmt.Errorf("%w: could not serialize access", database.ErrCommit)
	}

	for _, apply := range tx.pending {
		apply()
	}
	m.commits++
	return nil
}

// stage defers apply until the transaction in ctx commits.
func stage(ctx context.Context, apply func()) {
	tx := ctx.Value(fakeTxKey{}).(*fakeTx)
	tx.pending = append(tx.pending, apply)
}

// fakeRecordRepo stores audit records transactionally.
type fakeRecordRepo struct {
	records   []*auditDomain.AuditRecord
	createErr error
}

func (r *fakeRecordRepo) Create(ctx context.Context, record *auditDomain.AuditRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	stage(ctx, func() { r.records = append(r.records, record) })
	return nil
}

func (r *fakeRecordRepo) ListByTimeRange(
	_ context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditRecord, error) {
	matching := make([]*auditDomain.AuditRecord, 0)
	for _, record := range r.records {
		if !record.CreatedAt.Before(start) && !record.CreatedAt.After(end) {
			matching = append(matching, record)
		}
	}
	if offset >= len(matching) {
		return []*auditDomain.AuditRecord{}, nil
	}
	return matching[offset:min(offset+limit, len(matching))], nil
}

// fakeCredentialStore stands in for the store an audited action mutates.
type fakeCredentialStore struct {
	versions []string
}

func (s *fakeCredentialStore) save(ctx context.Context, name string) {
	stage(ctx, func() { s.versions = append(s.versions, name) })
}

// mockSecurityEventLogger is a mock implementation of SecurityEventLogger.
type mockSecurityEventLogger struct {
	mock.Mock
}

func (m *mockSecurityEventLogger) Log(ctx context.Context, event *auditDomain.SecurityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordAuditRecord(ctx context.Context, operation string, success bool) {
	m.Called(ctx, operation, success)
}

func (m *mockBusinessMetrics) RecordAuditFailure(ctx context.Context, operation string) {
	m.Called(ctx, operation)
}

func (m *mockBusinessMetrics) RecordBulkRegeneration(ctx context.Context, regenerated, failed int) {
	m.Called(ctx, regenerated, failed)
}
