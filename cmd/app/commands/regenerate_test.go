package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
)

type recordingExecutor struct {
	operations []auditDomain.OperationCode
	infos      []auditDomain.RequestInfo
}

func (e *recordingExecutor) PerformWithAuditing(
	ctx context.Context,
	operation auditDomain.OperationCode,
	action auditUseCase.Action,
) (*auditDomain.Result, error) {
	info, _ := auditDomain.GetRequestInfo(ctx)
	e.operations = append(e.operations, operation)
	e.infos = append(e.infos, info)
	return action(ctx, auditDomain.NewRecordBuilder(info, operation))
}

type mockRegenerationEngine struct {
	mock.Mock
}

func (m *mockRegenerationEngine) Regenerate(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, actor, name, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockRegenerationEngine) BulkRegenerate(
	ctx context.Context,
	actor, signerName string,
) (*credentialUseCase.BulkRegenerateResult, error) {
	args := m.Called(ctx, actor, signerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialUseCase.BulkRegenerateResult), args.Error(1)
}

func TestRunRegenerate(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		executor := &recordingExecutor{}
		engine := &mockRegenerationEngine{}
		credential := &credentialDomain.Credential{ID: uuid.Must(uuid.NewV7()), Name: "/DB/Password"}
		engine.On("Regenerate", mock.Anything, "uaa-client:ops", "/db/password", mock.Anything).
			Return(credential, nil)

		var out bytes.Buffer
		err := RunRegenerate(ctx, executor, engine, logger, &out, "uaa-client:ops", "db/password")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Regenerated /DB/Password")

		require.Len(t, executor.infos, 1)
		assert.Equal(t, []auditDomain.OperationCode{auditDomain.CredentialUpdate}, executor.operations)
		assert.Equal(t, "uaa-client:ops", executor.infos[0].Actor)
		assert.Equal(t, "regenerate", executor.infos[0].Path)
		assert.Equal(t, "CLI", executor.infos[0].Method)
		assert.NotEmpty(t, executor.infos[0].RequestID)
		engine.AssertExpectations(t)
	})

	t.Run("missing-actor", func(t *testing.T) {
		err := RunRegenerate(ctx, &recordingExecutor{}, &mockRegenerationEngine{}, logger, io.Discard, "", "/a")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "actor is required")
	})

	t.Run("invalid-name", func(t *testing.T) {
		err := RunRegenerate(ctx, &recordingExecutor{}, &mockRegenerationEngine{}, logger, io.Discard, "a", "/a/")
		assert.ErrorIs(t, err, credentialDomain.ErrInvalidName)
	})

	t.Run("not-found", func(t *testing.T) {
		engine := &mockRegenerationEngine{}
		engine.On("Regenerate", mock.Anything, "a", "/missing", mock.Anything).
			Return(nil, credentialDomain.ErrCredentialNotFound)

		err := RunRegenerate(ctx, &recordingExecutor{}, engine, logger, io.Discard, "a", "/missing")
		assert.ErrorIs(t, err, credentialDomain.ErrCredentialNotFound)
	})
}

func TestRunBulkRegenerate(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success-text", func(t *testing.T) {
		engine := &mockRegenerationEngine{}
		engine.On("BulkRegenerate", mock.Anything, "uaa-client:ops", "/ca").
			Return(&credentialUseCase.BulkRegenerateResult{Regenerated: []string{"/leaf-a", "/leaf-b"}}, nil)

		var out bytes.Buffer
		err := RunBulkRegenerate(ctx, engine, logger, &out, "uaa-client:ops", "ca", "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Regenerated: 2")
		assert.Contains(t, out.String(), "  - /leaf-b")
		engine.AssertExpectations(t)

		callCtx := engine.Calls[0].Arguments.Get(0).(context.Context)
		info, ok := auditDomain.GetRequestInfo(callCtx)
		require.True(t, ok)
		assert.Equal(t, "bulk-regenerate", info.Path)
	})

	t.Run("partial-failure-json", func(t *testing.T) {
		engine := &mockRegenerationEngine{}
		engine.On("BulkRegenerate", mock.Anything, "a", "/ca").
			Return(&credentialUseCase.BulkRegenerateResult{Failed: []string{"/leaf"}}, nil)

		var out bytes.Buffer
		err := RunBulkRegenerate(ctx, engine, logger, &out, "a", "/ca", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 certificate(s) could not be regenerated")

		var result map[string][]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, []string{}, result["regenerated_credentials"])
		assert.Equal(t, []string{"/leaf"}, result["failed_credentials"])
	})

	t.Run("engine-error", func(t *testing.T) {
		engine := &mockRegenerationEngine{}
		engine.On("BulkRegenerate", mock.Anything, "a", "/ca").Return(nil, errors.New("audit down"))

		err := RunBulkRegenerate(ctx, engine, logger, io.Discard, "a", "/ca", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to regenerate certificates signed by /ca")
	})

	t.Run("missing-actor", func(t *testing.T) {
		err := RunBulkRegenerate(ctx, &mockRegenerationEngine{}, logger, io.Discard, "", "/ca", "text")
		require.Error(t, err)
	})
}
