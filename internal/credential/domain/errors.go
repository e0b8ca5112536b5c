package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// Credential error definitions.
var (
	// ErrCredentialNotFound indicates the credential does not exist or the caller may not
	// see it. Both cases are reported identically.
	ErrCredentialNotFound = errors.Wrap(
		errors.ErrNotFound,
		"the request could not be completed because the credential does not exist or you do not have sufficient authorization",
	)

	// ErrUnknownKind indicates a credential kind outside the supported set.
	ErrUnknownKind = errors.Wrap(errors.ErrInvalidInput, "unknown credential kind")

	// ErrKindMismatch indicates an attempt to store a different kind under an existing name.
	ErrKindMismatch = errors.Wrap(
		errors.ErrInvalidInput,
		"the credential type cannot be modified, delete the credential to recreate it with a different type",
	)

	// ErrInvalidSSHPublicKey indicates a malformed SSH public key.
	ErrInvalidSSHPublicKey = errors.Wrap(errors.ErrInvalidInput, "invalid ssh public key")

	// ErrGenerationFailed indicates the credential value could not be generated.
	ErrGenerationFailed = errors.Wrap(errors.ErrInvalidInput, "credential generation failed")

	// ErrCannotRegenerate indicates a credential kind that has no generator.
	ErrCannotRegenerate = errors.Wrap(
		errors.ErrInvalidInput,
		"the credential could not be regenerated because its value was not generated",
	)

	// ErrInvalidName indicates an empty or malformed credential name.
	ErrInvalidName = errors.Wrap(errors.ErrInvalidInput, "invalid credential name")
)
