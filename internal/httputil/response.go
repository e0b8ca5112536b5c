// Package httputil writes the JSON error bodies shared by every handler.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// notFoundMessage is shared by missing credentials and denied credential operations.
const notFoundMessage = "The request could not be completed because the credential does not exist or you do not have sufficient authorization."

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// errorResponse builds the body for err. Only invalid input echoes the error text;
// everything else uses a fixed message so causes never leak to clients.
func errorResponse(err error) (int, ErrorResponse) {
	if apperrors.Is(err, auditDomain.ErrAuditUnavailable) {
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "audit_unavailable",
			Message: auditDomain.AuditUnavailableMessage,
		}
	}

	status := apperrors.StatusCode(err)
	switch status {
	case http.StatusNotFound:
		return status, ErrorResponse{Error: "not_found", Message: notFoundMessage}
	case http.StatusUnprocessableEntity:
		return status, ErrorResponse{Error: "invalid_input", Message: err.Error()}
	case http.StatusUnauthorized:
		return status, ErrorResponse{Error: "unauthorized", Message: "Authentication is required"}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}
}

// HandleErrorGin writes the response for a use case error. Server errors are logged at
// error level and client errors at warn level.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, body := errorResponse(err)
	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, body)
}

// BadRequestResult is the outcome of a body or query that could not be decoded.
func BadRequestResult(err error) *auditDomain.Result {
	return &auditDomain.Result{
		StatusCode: http.StatusBadRequest,
		Body:       ErrorResponse{Error: "bad_request", Message: err.Error()},
	}
}

// ValidationErrorResult is the outcome of a request that failed validation.
func ValidationErrorResult(err error) *auditDomain.Result {
	return &auditDomain.Result{
		StatusCode: http.StatusUnprocessableEntity,
		Body:       ErrorResponse{Error: "validation_error", Message: err.Error()},
	}
}

// WriteResult renders the result of an audited operation. Rejected requests are
// logged at warn level.
func WriteResult(c *gin.Context, result *auditDomain.Result, logger *slog.Logger) {
	if !result.Succeeded() && logger != nil {
		logger.Log(c, slog.LevelWarn, "request rejected",
			slog.Int("status_code", result.StatusCode),
			slog.Any("body", result.Body),
		)
	}
	if result.Body == nil {
		c.Data(result.StatusCode, "application/json", nil)
		return
	}
	c.JSON(result.StatusCode, result.Body)
}
