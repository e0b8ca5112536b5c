// Package http provides HTTP handlers for credential operations. Every handler runs as
// one audited operation, request decoding included, so rejected requests are audited
// too. Bulk regeneration audits the signer lookup and each certificate on its own.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	authHTTP "github.com/allisson/credstore/internal/auth/http"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	"github.com/allisson/credstore/internal/credential/http/dto"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
	apperrors "github.com/allisson/credstore/internal/errors"
	"github.com/allisson/credstore/internal/httputil"
	customValidation "github.com/allisson/credstore/internal/validation"
)

var errMissingActor = apperrors.Wrap(apperrors.ErrUnauthorized, "missing authenticated actor")

// CredentialHandler handles HTTP requests for credential operations.
type CredentialHandler struct {
	executor          auditUseCase.AuditedOperationExecutor
	credentialUseCase credentialUseCase.CredentialUseCase
	engine            credentialUseCase.RegenerationEngine
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(
	executor auditUseCase.AuditedOperationExecutor,
	credentialUseCase credentialUseCase.CredentialUseCase,
	engine credentialUseCase.RegenerationEngine,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		executor:          executor,
		credentialUseCase: credentialUseCase,
		engine:            engine,
		logger:            logger,
	}
}

// perform runs action as an audited operation and renders its result.
func (h *CredentialHandler) perform(
	c *gin.Context,
	operation auditDomain.OperationCode,
	action auditUseCase.Action,
) {
	result, err := h.executor.PerformWithAuditing(c.Request.Context(), operation, action)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	httputil.WriteResult(c, result, h.logger)
}

type validatable interface {
	Validate() error
}

// bindRequest decodes and validates the JSON body into req. A non-nil result describes
// why the request was rejected.
func bindRequest(c *gin.Context, req validatable) *auditDomain.Result {
	if err := c.ShouldBindJSON(req); err != nil {
		return httputil.BadRequestResult(err)
	}
	if err := req.Validate(); err != nil {
		return httputil.ValidationErrorResult(customValidation.WrapValidationError(err))
	}
	return nil
}

// nameQuery reads the required name query parameter.
func nameQuery(c *gin.Context) (string, *auditDomain.Result) {
	name := c.Query("name")
	if name == "" {
		return "", httputil.ValidationErrorResult(errors.New("name query parameter is required"))
	}
	return name, nil
}

func credentialResult(credential *credentialDomain.Credential, builder *auditDomain.RecordBuilder) *auditDomain.Result {
	builder.SetCredentialName(credential.Name)
	return &auditDomain.Result{
		StatusCode: http.StatusOK,
		Body:       dto.MapCredentialToResponse(credential),
	}
}

// GetHandler returns the most recent version of a credential.
// GET /api/v1/data?name=
func (h *CredentialHandler) GetHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.CredentialAccess,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			name, rejected := nameQuery(c)
			if rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(name)
			credential, err := h.credentialUseCase.Get(ctx, actor, name, builder)
			if err != nil {
				return nil, err
			}
			return credentialResult(credential, builder), nil
		},
	)
}

// SetHandler stores a user-supplied value.
// PUT /api/v1/data
func (h *CredentialHandler) SetHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.CredentialUpdate,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			var req dto.SetCredentialRequest
			if rejected := bindRequest(c, &req); rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(req.Name)
			request, err := req.ToDomain()
			if err != nil {
				return nil, err
			}
			credential, err := h.credentialUseCase.Set(ctx, actor, request, builder)
			if err != nil {
				return nil, err
			}
			return credentialResult(credential, builder), nil
		},
	)
}

// GenerateHandler generates and stores a new value.
// POST /api/v1/data
func (h *CredentialHandler) GenerateHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.CredentialUpdate,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			var req dto.GenerateCredentialRequest
			if rejected := bindRequest(c, &req); rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(req.Name)
			request, err := req.ToDomain()
			if err != nil {
				return nil, err
			}
			credential, err := h.credentialUseCase.Generate(ctx, actor, request, builder)
			if err != nil {
				return nil, err
			}
			return credentialResult(credential, builder), nil
		},
	)
}

// DeleteHandler removes every version of a credential and its ACL.
// DELETE /api/v1/data?name=
func (h *CredentialHandler) DeleteHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.CredentialDelete,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			name, rejected := nameQuery(c)
			if rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(name)
			if err := h.credentialUseCase.Delete(ctx, actor, name, builder); err != nil {
				return nil, err
			}
			return &auditDomain.Result{StatusCode: http.StatusNoContent}, nil
		},
	)
}

// RegenerateHandler reissues a credential with its stored generation parameters.
// POST /api/v1/regenerate
func (h *CredentialHandler) RegenerateHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.CredentialUpdate,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			var req dto.RegenerateRequest
			if rejected := bindRequest(c, &req); rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(req.Name)
			credential, err := h.engine.Regenerate(ctx, actor, req.Name, builder)
			if err != nil {
				return nil, err
			}
			return credentialResult(credential, builder), nil
		},
	)
}

// BulkRegenerateHandler regenerates every certificate signed by a CA. A request that
// cannot be decoded is audited as a failed signer lookup.
// POST /api/v1/bulk-regenerate
func (h *CredentialHandler) BulkRegenerateHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	var req dto.BulkRegenerateRequest
	if rejected := bindRequest(c, &req); rejected != nil {
		h.perform(c, auditDomain.CredentialFind,
			func(context.Context, *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
				return rejected, nil
			},
		)
		return
	}

	result, err := h.engine.BulkRegenerate(c.Request.Context(), actor, req.SignedBy)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapBulkRegenerateResult(result))
}

// InterpolateHandler replaces credential references in a service bindings document
// with the referenced values.
// POST /api/v1/interpolate
func (h *CredentialHandler) InterpolateHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.CredentialAccess,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			var document map[string]any
			if err := c.ShouldBindJSON(&document); err != nil {
				return httputil.BadRequestResult(err), nil
			}
			interpolated, err := h.credentialUseCase.Interpolate(ctx, actor, document, builder)
			if err != nil {
				return nil, err
			}
			return &auditDomain.Result{StatusCode: http.StatusOK, Body: interpolated}, nil
		},
	)
}
