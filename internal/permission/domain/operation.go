// Package domain defines access-control entries: the operations an actor may perform on
// a credential name.
package domain

import (
	"fmt"
	"slices"
)

// Operation defines what an actor may do with a credential or its ACL.
type Operation string

const (
	// ReadOperation allows reading credential values.
	ReadOperation Operation = "read"

	// WriteOperation allows setting, generating and regenerating credential values.
	WriteOperation Operation = "write"

	// DeleteOperation allows deleting every version of a credential.
	DeleteOperation Operation = "delete"

	// ReadACLOperation allows reading the credential's ACL.
	ReadACLOperation Operation = "read_acl"

	// WriteACLOperation allows changing the credential's ACL.
	WriteACLOperation Operation = "write_acl"
)

// AllOperations is granted to the actor that first creates a credential.
var AllOperations = []Operation{
	ReadOperation,
	WriteOperation,
	DeleteOperation,
	ReadACLOperation,
	WriteACLOperation,
}

// ParseOperation converts a string into an Operation.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !slices.Contains(AllOperations, op) {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, s)
	}
	return op, nil
}
