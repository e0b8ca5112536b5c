package usecase

import (
	"context"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialService "github.com/allisson/credstore/internal/credential/service"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// credentialUseCase implements CredentialUseCase.
type credentialUseCase struct {
	store          CredentialStore
	credentialRepo CredentialRepository
	generator      credentialService.CredentialGenerator
	permissions    PermissionChecker
	acl            AccessControlStore
}

func (c *credentialUseCase) Set(
	ctx context.Context,
	actor string,
	request *credentialDomain.SetRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	name, err := credentialDomain.NormalizeName(request.Name)
	if err != nil {
		return nil, err
	}

	if !request.Kind.IsValid() {
		return nil, credentialDomain.ErrUnknownKind
	}
	if err := credentialDomain.ValidateValue(request.Kind, request.Value); err != nil {
		return nil, err
	}

	return c.store.Save(ctx, actor, &SaveRequest{
		Name:                  name,
		Kind:                  request.Kind,
		Value:                 request.Value,
		AdditionalPermissions: request.AdditionalPermissions,
		Overwrite:             request.Overwrite,
	}, events)
}

func (c *credentialUseCase) Generate(
	ctx context.Context,
	actor string,
	request *credentialDomain.GenerationRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	name, err := credentialDomain.NormalizeName(request.Name)
	if err != nil {
		return nil, err
	}

	params := request.Parameters
	if params == nil {
		params = &credentialDomain.GenerationParameters{}
	}
	if err := params.Normalize(request.Kind); err != nil {
		return nil, err
	}

	save := &SaveRequest{
		Name:                  name,
		Kind:                  request.Kind,
		GenerationParameters:  params,
		AdditionalPermissions: request.AdditionalPermissions,
		Overwrite:             request.Overwrite,
	}

	// A kept version needs no new value.
	if !request.Overwrite {
		exists, err := c.credentialRepo.Exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if exists {
			return c.store.Save(ctx, actor, save, events)
		}
	}

	generation := &credentialDomain.GenerationRequest{
		Name:       name,
		Kind:       request.Kind,
		Parameters: params,
		Overwrite:  request.Overwrite,
	}
	if save.Value, err = c.generator.Generate(ctx, generation, actor); err != nil {
		return nil, err
	}
	return c.store.Save(ctx, actor, save, events)
}

func (c *credentialUseCase) Get(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	name, err := credentialDomain.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	events.AddEvent(auditDomain.CredentialAccess, name)

	allowed, err := c.permissions.HasPermission(ctx, actor, name, permissionDomain.ReadOperation)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, credentialDomain.ErrCredentialNotFound
	}
	return c.store.FindMostRecent(ctx, name)
}

func (c *credentialUseCase) Delete(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) error {
	name, err := credentialDomain.NormalizeName(name)
	if err != nil {
		return err
	}
	events.AddEvent(auditDomain.CredentialDelete, name)

	allowed, err := c.permissions.HasPermission(ctx, actor, name, permissionDomain.DeleteOperation)
	if err != nil {
		return err
	}
	if !allowed {
		return credentialDomain.ErrCredentialNotFound
	}

	deleted, err := c.credentialRepo.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return credentialDomain.ErrCredentialNotFound
	}
	return c.acl.DeleteAll(ctx, name)
}

// NewCredentialUseCase creates a new CredentialUseCase.
func NewCredentialUseCase(
	store CredentialStore,
	credentialRepo CredentialRepository,
	generator credentialService.CredentialGenerator,
	permissions PermissionChecker,
	acl AccessControlStore,
) CredentialUseCase {
	return &credentialUseCase{
		store:          store,
		credentialRepo: credentialRepo,
		generator:      generator,
		permissions:    permissions,
		acl:            acl,
	}
}
