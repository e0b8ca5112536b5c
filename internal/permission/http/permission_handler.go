// Package http provides HTTP handlers for access control list management.
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
	apperrors "github.com/allisson/credstore/internal/errors"
	"github.com/allisson/credstore/internal/httputil"
	"github.com/allisson/credstore/internal/permission/http/dto"
	permissionUseCase "github.com/allisson/credstore/internal/permission/usecase"
	customValidation "github.com/allisson/credstore/internal/validation"
)

var errMissingActor = apperrors.Wrap(apperrors.ErrUnauthorized, "missing authenticated actor")

// PermissionHandler handles HTTP requests for ACL operations. Each request runs as one
// audited operation.
type PermissionHandler struct {
	executor          auditUseCase.AuditedOperationExecutor
	permissionUseCase permissionUseCase.PermissionUseCase
	logger            *slog.Logger
}

// NewPermissionHandler creates a new permission handler with required dependencies.
func NewPermissionHandler(
	executor auditUseCase.AuditedOperationExecutor,
	permissionUseCase permissionUseCase.PermissionUseCase,
	logger *slog.Logger,
) *PermissionHandler {
	return &PermissionHandler{
		executor:          executor,
		permissionUseCase: permissionUseCase,
		logger:            logger,
	}
}

func (h *PermissionHandler) perform(
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

// credentialNameQuery reads and normalizes the credential_name query parameter. A
// non-nil result describes why the request was rejected.
func credentialNameQuery(c *gin.Context) (string, *auditDomain.Result) {
	name := c.Query("credential_name")
	if name == "" {
		return "", httputil.ValidationErrorResult(errors.New("credential_name query parameter is required"))
	}
	name, err := credentialDomain.NormalizeName(name)
	if err != nil {
		return "", httputil.ValidationErrorResult(err)
	}
	return name, nil
}

// GetHandler lists the ACL of a credential.
// GET /api/v1/permissions?credential_name=
func (h *PermissionHandler) GetHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.ACLAccess,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			name, rejected := credentialNameQuery(c)
			if rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(name)
			entries, err := h.permissionUseCase.GetACL(ctx, actor, name, builder)
			if err != nil {
				return nil, err
			}
			return &auditDomain.Result{
				StatusCode: http.StatusOK,
				Body:       dto.MapEntriesToResponse(name, entries),
			}, nil
		},
	)
}

// SetHandler merges permissions into the ACL of a credential.
// POST /api/v1/permissions
func (h *PermissionHandler) SetHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.ACLUpdate,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			var req dto.SetPermissionsRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return httputil.BadRequestResult(err), nil
			}
			if err := req.Validate(); err != nil {
				return httputil.ValidationErrorResult(customValidation.WrapValidationError(err)), nil
			}
			name, err := credentialDomain.NormalizeName(req.CredentialName)
			if err != nil {
				return httputil.ValidationErrorResult(err), nil
			}
			builder.SetCredentialName(name)
			entries, err := h.permissionUseCase.SetACL(ctx, actor, name, dto.ToEntries(req.Permissions), builder)
			if err != nil {
				return nil, err
			}
			return &auditDomain.Result{
				StatusCode: http.StatusCreated,
				Body:       dto.MapEntriesToResponse(name, entries),
			}, nil
		},
	)
}

// DeleteHandler removes the ACL entry of one actor.
// DELETE /api/v1/permissions?credential_name=&actor=
func (h *PermissionHandler) DeleteHandler(c *gin.Context) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, errMissingActor, h.logger)
		return
	}

	h.perform(c, auditDomain.ACLDelete,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			name, rejected := credentialNameQuery(c)
			if rejected != nil {
				return rejected, nil
			}
			builder.SetCredentialName(name)
			entryActor := c.Query("actor")
			if entryActor == "" {
				return httputil.ValidationErrorResult(errors.New("actor query parameter is required")), nil
			}
			if err := h.permissionUseCase.DeleteACLEntry(ctx, actor, name, entryActor, builder); err != nil {
				return nil, err
			}
			return &auditDomain.Result{StatusCode: http.StatusNoContent}, nil
		},
	)
}
