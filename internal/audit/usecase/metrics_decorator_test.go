package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
)

type stubExecutor struct {
	result *auditDomain.Result
	err    error
}

func (s *stubExecutor) PerformWithAuditing(
	ctx context.Context,
	operation auditDomain.OperationCode,
	action Action,
) (*auditDomain.Result, error) {
	return s.result, s.err
}

func TestAuditedOperationExecutorWithMetrics(t *testing.T) {
	tests := []struct {
		name   string
		next   *stubExecutor
		status string
	}{
		{"Success", &stubExecutor{result: &auditDomain.Result{StatusCode: 200}}, "success"},
		{"Failure_Error", &stubExecutor{err: errors.New("boom")}, "failure"},
		{"Failure_NonSuccessResult", &stubExecutor{result: &auditDomain.Result{StatusCode: 404}}, "failure"},
		{"AuditUnavailable", &stubExecutor{err: auditDomain.ErrAuditUnavailable}, "audit_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockBusinessMetrics{}
			m.On("RecordOperation", mock.Anything, "audit", "credential_update", tt.status).Once()
			m.On("RecordDuration", mock.Anything, "audit", "credential_update", mock.Anything, tt.status).Once()
			if tt.status == "audit_unavailable" {
				m.On("RecordAuditFailure", mock.Anything, "credential_update").Once()
			} else {
				m.On("RecordAuditRecord", mock.Anything, "credential_update", tt.status == "success").Once()
			}

			executor := NewAuditedOperationExecutorWithMetrics(tt.next, m)
			result, err := executor.PerformWithAuditing(context.Background(), auditDomain.CredentialUpdate, nil)

			assert.Equal(t, tt.next.result, result)
			assert.Equal(t, tt.next.err, err)
			m.AssertExpectations(t)
		})
	}
}
