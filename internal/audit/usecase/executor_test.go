package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditService "github.com/allisson/credstore/internal/audit/service"
	apperrors "github.com/allisson/credstore/internal/errors"
)

type executorFixture struct {
	txManager   *fakeTxManager
	recordRepo  *fakeRecordRepo
	store       *fakeCredentialStore
	securityLog *mockSecurityEventLogger
	executor    AuditedOperationExecutor
	ctx         context.Context
}

func newExecutorFixture(t *testing.T, signer auditService.AuditSigner) *executorFixture {
	t.Helper()
	f := &executorFixture{
		txManager:   &fakeTxManager{},
		recordRepo:  &fakeRecordRepo{},
		store:       &fakeCredentialStore{},
		securityLog: &mockSecurityEventLogger{},
	}
	f.executor = NewAuditedOperationExecutor(
		f.txManager,
		f.recordRepo,
		signer,
		f.securityLog,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	f.ctx = auditDomain.WithRequestInfo(context.Background(), auditDomain.RequestInfo{
		RequestID: "req-1",
		Actor:     "uaa-user:alice",
		Path:      "/api/v1/regenerate",
		Method:    http.MethodPost,
	})
	return f
}

// saveAction persists a credential version and answers with status.
func (f *executorFixture) saveAction(name string, status int) Action {
	return func(ctx context.Context, b *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
		b.SetCredentialName(name)
		b.AddEvent(auditDomain.CredentialUpdate, name)
		f.store.save(ctx, name)
		return &auditDomain.Result{StatusCode: status, Body: name}, nil
	}
}

// failingAction persists a credential version and then fails with err.
func (f *executorFixture) failingAction(name string, err error) Action {
	return func(ctx context.Context, b *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
		b.SetCredentialName(name)
		f.store.save(ctx, name)
		return nil, err
	}
}

func TestAuditedOperationExecutor_PerformWithAuditing(t *testing.T) {
	t.Run("Success_ActionAndRecordCommitTogether", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.securityLog.On("Log", mock.Anything, mock.MatchedBy(func(e *auditDomain.SecurityEvent) bool {
			return e.Success && e.StatusCode == http.StatusOK && e.CredentialName == "/db/password"
		})).Return(nil).Once()

		result, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.saveAction("/db/password", http.StatusOK))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "/db/password", result.Body)
		assert.Equal(t, []string{"/db/password"}, f.store.versions)
		require.Len(t, f.recordRepo.records, 1)

		record := f.recordRepo.records[0]
		assert.True(t, record.Success)
		assert.Equal(t, http.StatusOK, record.StatusCode)
		assert.Equal(t, "/db/password", record.CredentialName)
		assert.Equal(t, auditDomain.CredentialUpdate, record.Operation)
		assert.Equal(t, "req-1", record.RequestID)
		assert.Equal(t, "uaa-user:alice", record.Actor)
		assert.Equal(t, "/api/v1/regenerate", record.Path)
		assert.Equal(t, http.MethodPost, record.Method)
		assert.Len(t, record.Events, 1)
		assert.Empty(t, record.Signature)
		assert.Equal(t, 1, f.txManager.commits)
		f.securityLog.AssertExpectations(t)
	})

	t.Run("Success_ActionErrorIsAuditedAndReraised", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		actionErr := apperrors.Wrap(apperrors.ErrNotFound, "credential not found")
		f.securityLog.On("Log", mock.Anything, mock.MatchedBy(func(e *auditDomain.SecurityEvent) bool {
			return !e.Success && e.StatusCode == http.StatusNotFound
		})).Return(nil).Once()

		result, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.failingAction("/db/password", actionErr))

		assert.Nil(t, result)
		assert.Same(t, actionErr, err)
		assert.Empty(t, f.store.versions, "failed action effects must be rolled back")
		require.Len(t, f.recordRepo.records, 1)
		assert.False(t, f.recordRepo.records[0].Success)
		assert.Equal(t, http.StatusNotFound, f.recordRepo.records[0].StatusCode)
		assert.Equal(t, "/db/password", f.recordRepo.records[0].CredentialName)
		assert.Equal(t, 1, f.txManager.rollbacks)
		assert.Equal(t, 1, f.txManager.commits)
		f.securityLog.AssertExpectations(t)
	})

	t.Run("Success_NonSuccessResultIsAuditedAndReturned", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.securityLog.On("Log", mock.Anything, mock.MatchedBy(func(e *auditDomain.SecurityEvent) bool {
			return !e.Success && e.StatusCode == http.StatusUnprocessableEntity
		})).Return(nil).Once()

		result, err := f.executor.PerformWithAuditing(
			f.ctx,
			auditDomain.CredentialUpdate,
			f.saveAction("/db/password", http.StatusUnprocessableEntity),
		)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, result.StatusCode)
		assert.Empty(t, f.store.versions)
		require.Len(t, f.recordRepo.records, 1)
		assert.False(t, f.recordRepo.records[0].Success)
		assert.Equal(t, http.StatusUnprocessableEntity, f.recordRepo.records[0].StatusCode)
		f.securityLog.AssertExpectations(t)
	})

	t.Run("Success_MinimalRecordWhenNothingIsKnown", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.securityLog.On("Log", mock.Anything, mock.Anything).Return(nil).Once()
		invalid := apperrors.Wrap(apperrors.ErrInvalidInput, "malformed request")

		_, err := f.executor.PerformWithAuditing(
			context.Background(),
			auditDomain.ACLUpdate,
			func(ctx context.Context, b *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
				return nil, invalid
			},
		)

		assert.Same(t, invalid, err)
		require.Len(t, f.recordRepo.records, 1)
		record := f.recordRepo.records[0]
		assert.Empty(t, record.CredentialName)
		assert.Empty(t, record.Actor)
		assert.Empty(t, record.RequestID)
		assert.Equal(t, auditDomain.ACLUpdate, record.Operation)
		assert.Equal(t, http.StatusUnprocessableEntity, record.StatusCode)
	})

	t.Run("Success_SecurityLogFailureDoesNotMaskOutcome", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.securityLog.On("Log", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		result, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.saveAction("/db/password", http.StatusOK))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Len(t, f.recordRepo.records, 1)
		f.securityLog.AssertExpectations(t)
	})

	t.Run("Success_RecordsAreSigned", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)
		signer, err := auditService.NewAuditSigner(key)
		require.NoError(t, err)

		f := newExecutorFixture(t, signer)
		f.securityLog.On("Log", mock.Anything, mock.Anything).Return(nil).Once()

		_, err = f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.saveAction("/db/password", http.StatusOK))

		require.NoError(t, err)
		require.Len(t, f.recordRepo.records, 1)
		record := f.recordRepo.records[0]
		assert.Len(t, record.Signature, 32)
		assert.NoError(t, signer.Verify(record))
		assert.Equal(t, record.CreatedAt, record.CreatedAt.Truncate(time.Microsecond))
	})

	t.Run("Error_RecordPersistFailsOnSuccess", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.recordRepo.createErr = errors.New("relation audit_records does not exist")

		result, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.saveAction("/db/password", http.StatusOK))

		assert.Nil(t, result)
		assert.ErrorIs(t, err, auditDomain.ErrAuditUnavailable)
		assert.Equal(t, http.StatusInternalServerError, apperrors.StatusCode(err))
		assert.Equal(t, auditDomain.AuditUnavailableMessage, err.Error())
		assert.Empty(t, f.store.versions)
		f.securityLog.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
	})

	t.Run("Error_CommitFailsOnSuccess", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.txManager.failCommitOnCall = 1

		result, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.saveAction("/db/password", http.StatusOK))

		assert.Nil(t, result)
		assert.ErrorIs(t, err, auditDomain.ErrAuditUnavailable)
		assert.Empty(t, f.store.versions)
		assert.Empty(t, f.recordRepo.records)
		f.securityLog.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
	})

	t.Run("Error_RecordPersistFailsAfterActionError", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.recordRepo.createErr = errors.New("connection refused")
		actionErr := apperrors.Wrap(apperrors.ErrNotFound, "credential not found")

		result, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.failingAction("/db/password", actionErr))

		assert.Nil(t, result)
		assert.ErrorIs(t, err, auditDomain.ErrAuditUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
		assert.Empty(t, f.store.versions)
		f.securityLog.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
	})

	t.Run("Error_FailureRecordCommitFails", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.txManager.failCommitOnCall = 2
		actionErr := apperrors.Wrap(apperrors.ErrInvalidInput, "bad parameters")

		_, err := f.executor.PerformWithAuditing(f.ctx, auditDomain.CredentialUpdate, f.failingAction("/db/password", actionErr))

		assert.ErrorIs(t, err, auditDomain.ErrAuditUnavailable)
		assert.Empty(t, f.recordRepo.records)
		assert.Empty(t, f.store.versions)
		f.securityLog.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
	})

	t.Run("Error_RollbackFailsSkipsFailureRecord", func(t *testing.T) {
		f := newExecutorFixture(t, nil)
		f.txManager.failRollback = true

		_, err := f.executor.PerformWithAuditing(
			f.ctx,
			auditDomain.CredentialUpdate,
			f.failingAction("/db/password", errors.New("generator unavailable")),
		)

		assert.ErrorIs(t, err, auditDomain.ErrAuditUnavailable)
		assert.Equal(t, 1, f.txManager.calls)
		assert.Empty(t, f.recordRepo.records)
		f.securityLog.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
	})
}
