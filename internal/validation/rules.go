// Package validation holds the jellydator/validation rules shared by request DTOs and
// generation parameters.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credstore/internal/errors"
)

const (
	maxCredentialNameLength = 1024
	maxActorLength          = 255
)

var (
	credentialNameRegex = regexp.MustCompile(`^[A-Za-z0-9_\-./:\[\]]+$`)
	actorRegex          = regexp.MustCompile(`^\S+$`)
)

// WrapValidationError turns a validation failure into an ErrInvalidInput so handlers
// answer 422.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// CredentialName accepts path-like names without empty segments.
var CredentialName = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= maxCredentialNameLength &&
			credentialNameRegex.MatchString(s) &&
			!strings.Contains(s, "//")
	},
	validation.NewError(
		"validation_credential_name",
		"must be at most 1024 characters of letters, numbers and _ - . / : [ ] without empty segments",
	),
)

// Actor accepts an actor identifier such as "uaa-user:alice" or "mtls-app:uuid".
var Actor = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= maxActorLength && actorRegex.MatchString(s)
	},
	validation.NewError("validation_actor", "must be at most 255 characters without whitespace"),
)

// KeyLength accepts the supported RSA modulus sizes.
var KeyLength = validation.In(2048, 3072, 4096).Error("must be one of 2048, 3072 or 4096")
