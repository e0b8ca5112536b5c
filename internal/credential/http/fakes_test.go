package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	authDomain "github.com/allisson/credstore/internal/auth/domain"
	authHTTP "github.com/allisson/credstore/internal/auth/http"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
	apperrors "github.com/allisson/credstore/internal/errors"
)

const actor = "uaa-user:alice"

// passThroughExecutor runs the action with a fresh builder and keeps the builder and
// the record it would have stored for inspection.
type passThroughExecutor struct {
	operations []auditDomain.OperationCode
	builders   []*auditDomain.RecordBuilder
	records    []*auditDomain.AuditRecord
	err        error
}

func (e *passThroughExecutor) PerformWithAuditing(
	ctx context.Context,
	operation auditDomain.OperationCode,
	action auditUseCase.Action,
) (*auditDomain.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	builder := auditDomain.NewRecordBuilder(auditDomain.RequestInfo{}, operation)
	e.operations = append(e.operations, operation)
	e.builders = append(e.builders, builder)
	result, err := action(ctx, builder)
	status := apperrors.StatusCode(err)
	if err == nil {
		status = result.StatusCode
	}
	e.records = append(e.records, builder.Build(err == nil && result.Succeeded(), status, time.Now()))
	return result, err
}

type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) Set(
	ctx context.Context,
	actor string,
	request *credentialDomain.SetRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, actor, request, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Generate(
	ctx context.Context,
	actor string,
	request *credentialDomain.GenerationRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	args := m.Called(ctx, actor, request, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialDomain.Credential), args.Error(1)
}

func (m *mockCredentialUseCase) Get(
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

func (m *mockCredentialUseCase) Delete(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) error {
	args := m.Called(ctx, actor, name, events)
	return args.Error(0)
}

func (m *mockCredentialUseCase) Interpolate(
	ctx context.Context,
	actor string,
	document map[string]any,
	events auditDomain.EventRecorder,
) (map[string]any, error) {
	args := m.Called(ctx, actor, document, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
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

// createTestContext creates a test Gin context carrying an authenticated principal.
func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewBufferString(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	principal := &authDomain.Principal{GrantType: authDomain.PasswordGrant, UserID: "alice"}
	c.Request = req.WithContext(authHTTP.WithPrincipal(req.Context(), principal))

	return c, w
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
