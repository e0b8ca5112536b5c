package usecase

import (
	"context"

	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// permissionEnforcer implements PermissionEnforcer.
type permissionEnforcer struct {
	entryRepo AccessControlEntryRepository
	names     CredentialNameResolver
	enabled   bool
}

// HasPermission looks the operation up in the actor's entry. With enforcement disabled
// every check passes.
func (p *permissionEnforcer) HasPermission(
	ctx context.Context,
	actor, credentialName string,
	op permissionDomain.Operation,
) (bool, error) {
	if !p.enabled {
		return true, nil
	}

	entry, err := p.entryRepo.GetEntry(ctx, credentialName, actor)
	if err != nil {
		if apperrors.Is(err, permissionDomain.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	return entry.Allows(op), nil
}

func (p *permissionEnforcer) CanRead(ctx context.Context, actor, credentialName string) (bool, error) {
	return p.HasPermission(ctx, actor, credentialName, permissionDomain.ReadACLOperation)
}

func (p *permissionEnforcer) CanWrite(ctx context.Context, actor, credentialName string) (bool, error) {
	return p.HasPermission(ctx, actor, credentialName, permissionDomain.WriteACLOperation)
}

// EnforceReadOrNotFound resolves the name first, then checks permission.
func (p *permissionEnforcer) EnforceReadOrNotFound(ctx context.Context, actor, credentialName string) error {
	exists, err := p.names.Exists(ctx, credentialName)
	if err != nil {
		return err
	}
	if !exists {
		return permissionDomain.ErrResourceNotFound
	}

	allowed, err := p.CanRead(ctx, actor, credentialName)
	if err != nil {
		return err
	}
	if !allowed {
		return permissionDomain.ErrResourceNotFound
	}
	return nil
}

// EnforceWriteOrNotFound checks permission only; callers resolve the name afterwards.
func (p *permissionEnforcer) EnforceWriteOrNotFound(ctx context.Context, actor, credentialName string) error {
	allowed, err := p.CanWrite(ctx, actor, credentialName)
	if err != nil {
		return err
	}
	if !allowed {
		return permissionDomain.ErrResourceNotFound
	}
	return nil
}

// NewPermissionEnforcer creates a PermissionEnforcer. When enabled is false every
// permission check passes; missing names are still reported.
func NewPermissionEnforcer(
	entryRepo AccessControlEntryRepository,
	names CredentialNameResolver,
	enabled bool,
) PermissionEnforcer {
	return &permissionEnforcer{entryRepo: entryRepo, names: names, enabled: enabled}
}
