package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// permissionUseCase implements PermissionUseCase.
type permissionUseCase struct {
	entryRepo AccessControlEntryRepository
	names     CredentialNameResolver
	enforcer  PermissionEnforcer
}

func (p *permissionUseCase) GetACL(
	ctx context.Context,
	actor, credentialName string,
	events auditDomain.EventRecorder,
) ([]*permissionDomain.AccessControlEntry, error) {
	events.AddEvent(auditDomain.ACLAccess, credentialName)

	if err := p.enforcer.EnforceReadOrNotFound(ctx, actor, credentialName); err != nil {
		return nil, err
	}
	return p.entryRepo.Get(ctx, credentialName)
}

func (p *permissionUseCase) SetACL(
	ctx context.Context,
	actor, credentialName string,
	entries []*permissionDomain.AccessControlEntry,
	events auditDomain.EventRecorder,
) ([]*permissionDomain.AccessControlEntry, error) {
	for _, entry := range entries {
		events.AddEvent(auditDomain.ACLUpdate, credentialName)
		if entry.Actor == actor {
			return nil, permissionDomain.ErrSelfModification
		}
	}

	if err := p.enforcer.EnforceWriteOrNotFound(ctx, actor, credentialName); err != nil {
		return nil, err
	}

	exists, err := p.names.Exists(ctx, credentialName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, permissionDomain.ErrResourceNotFound
	}

	if err := p.Save(ctx, credentialName, entries); err != nil {
		return nil, err
	}
	return p.entryRepo.Get(ctx, credentialName)
}

func (p *permissionUseCase) DeleteACLEntry(
	ctx context.Context,
	actor, credentialName, entryActor string,
	events auditDomain.EventRecorder,
) error {
	events.AddEvent(auditDomain.ACLDelete, credentialName)

	if entryActor == actor {
		return permissionDomain.ErrSelfModification
	}

	if err := p.enforcer.EnforceWriteOrNotFound(ctx, actor, credentialName); err != nil {
		return err
	}

	deleted, err := p.entryRepo.DeleteEntry(ctx, credentialName, entryActor)
	if err != nil {
		return err
	}
	if !deleted {
		return permissionDomain.ErrResourceNotFound
	}
	return nil
}

// Save merges the operations of each entry into the existing entry of its actor, creating
// entries for new actors.
func (p *permissionUseCase) Save(
	ctx context.Context,
	credentialName string,
	entries []*permissionDomain.AccessControlEntry,
) error {
	for _, entry := range entries {
		if entry.Actor == "" || len(entry.Operations) == 0 {
			return permissionDomain.ErrInvalidEntry
		}

		existing, err := p.entryRepo.GetEntry(ctx, credentialName, entry.Actor)
		switch {
		case err == nil:
			existing.Merge(entry.Operations)
			if err := p.entryRepo.Update(ctx, existing); err != nil {
				return err
			}
		case apperrors.Is(err, permissionDomain.ErrResourceNotFound):
			created := &permissionDomain.AccessControlEntry{
				ID:             uuid.Must(uuid.NewV7()),
				CredentialName: credentialName,
				Actor:          entry.Actor,
				CreatedAt:      time.Now().UTC(),
			}
			created.Merge(entry.Operations)
			if err := p.entryRepo.Create(ctx, created); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

func (p *permissionUseCase) DeleteAll(ctx context.Context, credentialName string) error {
	return p.entryRepo.DeleteByCredentialName(ctx, credentialName)
}

// NewPermissionUseCase creates a new PermissionUseCase.
func NewPermissionUseCase(
	entryRepo AccessControlEntryRepository,
	names CredentialNameResolver,
	enforcer PermissionEnforcer,
) PermissionUseCase {
	return &permissionUseCase{entryRepo: entryRepo, names: names, enforcer: enforcer}
}
