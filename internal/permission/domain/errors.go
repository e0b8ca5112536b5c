package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// Permission error definitions.
var (
	// ErrResourceNotFound is returned for a missing credential name, a missing ACL entry
	// and a denied ACL operation alike.
	ErrResourceNotFound = errors.Wrap(
		errors.ErrNotFound,
		"the request could not be completed because the credential does not exist or you do not have sufficient authorization",
	)

	// ErrInvalidOperation indicates an unknown operation name.
	ErrInvalidOperation = errors.Wrap(errors.ErrInvalidInput, "invalid permission operation")

	// ErrInvalidEntry indicates an entry without actor or operations.
	ErrInvalidEntry = errors.Wrap(errors.ErrInvalidInput, "invalid access control entry")

	// ErrSelfModification indicates an actor trying to change its own entry.
	ErrSelfModification = errors.Wrap(
		errors.ErrInvalidInput,
		"modification of access control for the authenticated user is not allowed",
	)
)
