// Package usecase implements permission enforcement and access control list management
// for credential names.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// AccessControlEntryRepository persists ACL entries. Credential names are matched
// case-insensitively.
type AccessControlEntryRepository interface {
	Create(ctx context.Context, entry *permissionDomain.AccessControlEntry) error
	Update(ctx context.Context, entry *permissionDomain.AccessControlEntry) error
	Get(ctx context.Context, credentialName string) ([]*permissionDomain.AccessControlEntry, error)

	// GetEntry returns ErrResourceNotFound when actor has no entry on credentialName.
	GetEntry(ctx context.Context, credentialName, actor string) (*permissionDomain.AccessControlEntry, error)

	// DeleteEntry reports whether an entry was removed.
	DeleteEntry(ctx context.Context, credentialName, actor string) (bool, error)

	DeleteByCredentialName(ctx context.Context, credentialName string) error
}

// CredentialNameResolver reports whether a credential name exists.
type CredentialNameResolver interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// PermissionEnforcer decides what an actor may do with a credential name. Every denial
// is reported as ErrResourceNotFound, the same error as a missing name.
type PermissionEnforcer interface {
	// HasPermission reports whether actor was granted op on credentialName.
	HasPermission(ctx context.Context, actor, credentialName string, op permissionDomain.Operation) (bool, error)

	// CanRead reports whether actor may read the ACL of credentialName.
	CanRead(ctx context.Context, actor, credentialName string) (bool, error)

	// CanWrite reports whether actor may change the ACL of credentialName.
	CanWrite(ctx context.Context, actor, credentialName string) (bool, error)

	// EnforceReadOrNotFound fails with ErrResourceNotFound when credentialName does not
	// exist or actor may not read its ACL.
	EnforceReadOrNotFound(ctx context.Context, actor, credentialName string) error

	// EnforceWriteOrNotFound fails with ErrResourceNotFound when actor may not change the
	// ACL of credentialName. Permission is checked before existence.
	EnforceWriteOrNotFound(ctx context.Context, actor, credentialName string) error
}

// PermissionUseCase manages the ACL of credential names. Methods taking an EventRecorder
// annotate the audit record of the surrounding operation.
type PermissionUseCase interface {
	// GetACL returns every entry of credentialName.
	GetACL(
		ctx context.Context,
		actor, credentialName string,
		events auditDomain.EventRecorder,
	) ([]*permissionDomain.AccessControlEntry, error)

	// SetACL merges entries into the ACL of credentialName and returns the resulting ACL.
	SetACL(
		ctx context.Context,
		actor, credentialName string,
		entries []*permissionDomain.AccessControlEntry,
		events auditDomain.EventRecorder,
	) ([]*permissionDomain.AccessControlEntry, error)

	// DeleteACLEntry removes the entry of entryActor. A second delete of the same entry
	// fails with ErrResourceNotFound.
	DeleteACLEntry(
		ctx context.Context,
		actor, credentialName, entryActor string,
		events auditDomain.EventRecorder,
	) error

	// Save merges entries into the ACL of credentialName without permission checks.
	Save(ctx context.Context, credentialName string, entries []*permissionDomain.AccessControlEntry) error

	// DeleteAll removes the whole ACL of credentialName.
	DeleteAll(ctx context.Context, credentialName string) error
}
