package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// AuditUnavailableMessage is the only message callers see when an operation could not
// be durably audited.
const AuditUnavailableMessage = "The request could not be completed. Please contact your system administrator to resolve this issue."

// Audit error definitions.
var (
	// ErrAuditUnavailable replaces the outcome of any operation whose audit record could
	// not be persisted or committed.
	ErrAuditUnavailable = errors.New(AuditUnavailableMessage)

	// ErrSignatureInvalid indicates an audit record whose signature does not match.
	ErrSignatureInvalid = errors.New("audit record signature is invalid")

	// ErrInvalidDateRange indicates a verification range whose start is after its end.
	ErrInvalidDateRange = errors.Wrap(errors.ErrInvalidInput, "start date must be before end date")
)
