package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AccessControlEntry grants a set of operations on a credential name to one actor.
// Entries are unique per (CredentialName, Actor) and apply to every version of the name.
type AccessControlEntry struct {
	ID             uuid.UUID
	CredentialName string
	Actor          string
	Operations     []Operation
	CreatedAt      time.Time
}

// Allows reports whether the entry grants op.
func (e *AccessControlEntry) Allows(op Operation) bool {
	return slices.Contains(e.Operations, op)
}

// Merge adds the operations of ops that the entry does not have yet, keeping the
// canonical order of AllOperations.
func (e *AccessControlEntry) Merge(ops []Operation) {
	merged := make([]Operation, 0, len(AllOperations))
	for _, op := range AllOperations {
		if e.Allows(op) || slices.Contains(ops, op) {
			merged = append(merged, op)
		}
	}
	e.Operations = merged
}
