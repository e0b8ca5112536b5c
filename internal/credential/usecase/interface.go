// Package usecase implements credential storage, retrieval and regeneration on top of
// the permission model and the audited operation executor.
package usecase

import (
	"context"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// CredentialRepository persists credential versions. Names are matched case-insensitively.
type CredentialRepository interface {
	Create(ctx context.Context, credential *credentialDomain.Credential) error

	// FindMostRecent returns ErrCredentialNotFound when name has no versions.
	FindMostRecent(ctx context.Context, name string) (*credentialDomain.Credential, error)

	// FindAllCertificateNamesBySigner returns the distinct names of certificate
	// credentials whose most recent or past versions were signed by signerName.
	FindAllCertificateNamesBySigner(ctx context.Context, signerName string) ([]string, error)

	Exists(ctx context.Context, name string) (bool, error)

	// DeleteByName removes every version of name and reports whether any existed.
	DeleteByName(ctx context.Context, name string) (bool, error)
}

// PermissionChecker is the part of the permission enforcer the credential operations need.
type PermissionChecker interface {
	HasPermission(ctx context.Context, actor, credentialName string, op permissionDomain.Operation) (bool, error)
	CanWrite(ctx context.Context, actor, credentialName string) (bool, error)
}

// AccessControlStore is the part of the ACL use case the credential operations need.
type AccessControlStore interface {
	Save(ctx context.Context, credentialName string, entries []*permissionDomain.AccessControlEntry) error
	DeleteAll(ctx context.Context, credentialName string) error
}

// SaveRequest is a new version to store under Name.
type SaveRequest struct {
	Name string
	Kind credentialDomain.Kind
	// Value is ignored when an existing version is kept because Overwrite is false.
	Value                 *credentialDomain.CredentialValue
	GenerationParameters  *credentialDomain.GenerationParameters
	AdditionalPermissions []*permissionDomain.AccessControlEntry
	Overwrite             bool
}

// CredentialStore saves and loads credential versions with their values decrypted.
type CredentialStore interface {
	// FindMostRecent returns the newest version of name with its value decrypted. It
	// does not check permissions.
	FindMostRecent(ctx context.Context, name string) (*credentialDomain.Credential, error)

	// Save stores a new version on behalf of actor, or returns the existing version
	// when the name exists and Overwrite is false. The first version grants actor every
	// operation on the name.
	Save(
		ctx context.Context,
		actor string,
		request *SaveRequest,
		events auditDomain.EventRecorder,
	) (*credentialDomain.Credential, error)

	// FindAllCertificateNamesBySigner lists the certificates signed by signerName. The
	// actor needs read permission on the signer.
	FindAllCertificateNamesBySigner(ctx context.Context, actor, signerName string) ([]string, error)

	// LoadCertificateAuthority returns the value of the CA credential name. The actor
	// needs read permission on it.
	LoadCertificateAuthority(ctx context.Context, actor, name string) (*credentialDomain.CredentialValue, error)
}

// CredentialUseCase defines the user-facing credential operations. Every method
// annotates the audit record of the surrounding operation through events.
type CredentialUseCase interface {
	// Set stores a user-supplied value.
	Set(
		ctx context.Context,
		actor string,
		request *credentialDomain.SetRequest,
		events auditDomain.EventRecorder,
	) (*credentialDomain.Credential, error)

	// Generate stores a newly generated value.
	Generate(
		ctx context.Context,
		actor string,
		request *credentialDomain.GenerationRequest,
		events auditDomain.EventRecorder,
	) (*credentialDomain.Credential, error)

	// Get returns the most recent version of name.
	Get(
		ctx context.Context,
		actor, name string,
		events auditDomain.EventRecorder,
	) (*credentialDomain.Credential, error)

	// Delete removes every version of name and its ACL.
	Delete(ctx context.Context, actor, name string, events auditDomain.EventRecorder) error

	// Interpolate replaces each credentials object of a service bindings document that
	// holds a credential reference with the value of that credential. Every reference
	// needs read permission and is annotated as a credential access. The document is
	// modified in place and returned.
	Interpolate(
		ctx context.Context,
		actor string,
		document map[string]any,
		events auditDomain.EventRecorder,
	) (map[string]any, error)
}

// BulkRegenerateResult lists the outcome of a bulk regeneration per credential name.
type BulkRegenerateResult struct {
	Regenerated []string
	Failed      []string
}

// RegenerationEngine reissues credentials from their stored generation parameters.
type RegenerationEngine interface {
	// Regenerate stores a new version of name generated with the parameters of its most
	// recent version.
	Regenerate(
		ctx context.Context,
		actor, name string,
		events auditDomain.EventRecorder,
	) (*credentialDomain.Credential, error)

	// BulkRegenerate regenerates every certificate signed by signerName. Each name is
	// regenerated and audited on its own; a failure does not stop the others.
	BulkRegenerate(ctx context.Context, actor, signerName string) (*BulkRegenerateResult, error)
}
