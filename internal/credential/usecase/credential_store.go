package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialService "github.com/allisson/credstore/internal/credential/service"
	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// credentialStore implements CredentialStore.
type credentialStore struct {
	credentialRepo CredentialRepository
	cipher         credentialService.ValueCipher
	permissions    PermissionChecker
	acl            AccessControlStore
	now            func() time.Time
}

func (s *credentialStore) FindMostRecent(ctx context.Context, name string) (*credentialDomain.Credential, error) {
	credential, err := s.credentialRepo.FindMostRecent(ctx, name)
	if err != nil {
		return nil, err
	}
	if credential.Value, err = s.cipher.Open(credential); err != nil {
		return nil, err
	}
	return credential, nil
}

func (s *credentialStore) Save(
	ctx context.Context,
	actor string,
	request *SaveRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	existing, err := s.credentialRepo.FindMostRecent(ctx, request.Name)
	if err != nil && !apperrors.Is(err, credentialDomain.ErrCredentialNotFound) {
		return nil, err
	}

	if existing != nil {
		if err := s.require(ctx, actor, existing.Name, permissionDomain.WriteOperation); err != nil {
			return nil, err
		}
		if existing.Kind != request.Kind {
			return nil, credentialDomain.ErrKindMismatch
		}
		if !request.Overwrite {
			events.AddEvent(auditDomain.CredentialAccess, existing.Name)
			if err := s.require(ctx, actor, existing.Name, permissionDomain.ReadOperation); err != nil {
				return nil, err
			}
			if existing.Value, err = s.cipher.Open(existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if len(request.AdditionalPermissions) > 0 {
			allowed, err := s.permissions.CanWrite(ctx, actor, existing.Name)
			if err != nil {
				return nil, err
			}
			if !allowed {
				return nil, credentialDomain.ErrCredentialNotFound
			}
		}
	}

	credential := &credentialDomain.Credential{
		ID:                   uuid.Must(uuid.NewV7()),
		Name:                 request.Name,
		Kind:                 request.Kind,
		GenerationParameters: request.GenerationParameters,
		VersionCreatedAt:     s.versionTimestamp(existing),
	}
	if existing != nil {
		credential.Name = existing.Name
	}
	if request.Kind == credentialDomain.CertificateKind && request.GenerationParameters != nil {
		credential.SignerName = request.GenerationParameters.CA
	}

	if err := s.cipher.Seal(credential, request.Value); err != nil {
		return nil, err
	}
	if err := s.credentialRepo.Create(ctx, credential); err != nil {
		return nil, err
	}
	events.AddEvent(auditDomain.CredentialUpdate, credential.Name)

	entries := request.AdditionalPermissions
	if existing == nil {
		owner := &permissionDomain.AccessControlEntry{Actor: actor, Operations: permissionDomain.AllOperations}
		entries = append([]*permissionDomain.AccessControlEntry{owner}, entries...)
	}
	for range request.AdditionalPermissions {
		events.AddEvent(auditDomain.ACLUpdate, credential.Name)
	}
	if err := s.acl.Save(ctx, credential.Name, entries); err != nil {
		return nil, err
	}

	credential.Value = request.Value
	return credential, nil
}

func (s *credentialStore) FindAllCertificateNamesBySigner(
	ctx context.Context,
	actor, signerName string,
) ([]string, error) {
	signerName, err := credentialDomain.NormalizeName(signerName)
	if err != nil {
		return nil, err
	}
	exists, err := s.credentialRepo.Exists(ctx, signerName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, credentialDomain.ErrCredentialNotFound
	}
	if err := s.require(ctx, actor, signerName, permissionDomain.ReadOperation); err != nil {
		return nil, err
	}
	return s.credentialRepo.FindAllCertificateNamesBySigner(ctx, signerName)
}

func (s *credentialStore) LoadCertificateAuthority(
	ctx context.Context,
	actor, name string,
) (*credentialDomain.CredentialValue, error) {
	name, err := credentialDomain.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	ca, err := s.credentialRepo.FindMostRecent(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, actor, ca.Name, permissionDomain.ReadOperation); err != nil {
		return nil, err
	}
	if ca.Kind != credentialDomain.CertificateKind {
		return nil, credentialDomain.ErrCredentialNotFound
	}
	return s.cipher.Open(ca)
}

// require fails with ErrCredentialNotFound unless actor was granted op on name.
func (s *credentialStore) require(ctx context.Context, actor, name string, op permissionDomain.Operation) error {
	allowed, err := s.permissions.HasPermission(ctx, actor, name, op)
	if err != nil {
		return err
	}
	if !allowed {
		return credentialDomain.ErrCredentialNotFound
	}
	return nil
}

// versionTimestamp returns a creation time strictly after the existing version so the
// new version is always the most recent one.
func (s *credentialStore) versionTimestamp(existing *credentialDomain.Credential) time.Time {
	ts := s.now().UTC().Truncate(time.Microsecond)
	if existing != nil && !ts.After(existing.VersionCreatedAt) {
		ts = existing.VersionCreatedAt.Add(time.Microsecond)
	}
	return ts
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(
	credentialRepo CredentialRepository,
	cipher credentialService.ValueCipher,
	permissions PermissionChecker,
	acl AccessControlStore,
) CredentialStore {
	return &credentialStore{
		credentialRepo: credentialRepo,
		cipher:         cipher,
		permissions:    permissions,
		acl:            acl,
		now:            time.Now,
	}
}
