package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialService "github.com/allisson/credstore/internal/credential/service"
	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// regenerationEngine implements RegenerationEngine.
type regenerationEngine struct {
	store       CredentialStore
	generator   credentialService.CredentialGenerator
	permissions PermissionChecker
	executor    auditUseCase.AuditedOperationExecutor
	logger      *slog.Logger
}

func (r *regenerationEngine) Regenerate(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	name, err := credentialDomain.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	existing, err := r.store.FindMostRecent(ctx, name)
	if apperrors.Is(err, credentialDomain.ErrCredentialNotFound) {
		events.AddEvent(auditDomain.CredentialUpdate, name)
		return nil, credentialDomain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}

	allowed, err := r.permissions.HasPermission(ctx, actor, existing.Name, permissionDomain.WriteOperation)
	if err != nil {
		return nil, err
	}
	if !allowed {
		events.AddEvent(auditDomain.CredentialUpdate, existing.Name)
		return nil, credentialDomain.ErrCredentialNotFound
	}

	// Passwords stored without parameters are regenerated with defaults.
	if existing.Kind == credentialDomain.PasswordKind && existing.GenerationParameters == nil {
		events.AddEvent(auditDomain.CredentialUpdate, existing.Name)
	}

	request, err := credentialDomain.NewRegenerationRequest(existing)
	if err != nil {
		return nil, err
	}
	value, err := r.generator.Generate(ctx, request, actor)
	if err != nil {
		return nil, err
	}

	return r.store.Save(ctx, actor, &SaveRequest{
		Name:                 request.Name,
		Kind:                 request.Kind,
		Value:                value,
		GenerationParameters: request.Parameters,
		Overwrite:            request.Overwrite,
	}, events)
}

func (r *regenerationEngine) BulkRegenerate(
	ctx context.Context,
	actor, signerName string,
) (*BulkRegenerateResult, error) {
	var names []string
	_, err := r.executor.PerformWithAuditing(
		ctx,
		auditDomain.CredentialFind,
		func(txCtx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			builder.SetCredentialName(signerName)
			found, err := r.store.FindAllCertificateNamesBySigner(txCtx, actor, signerName)
			if err != nil {
				return nil, err
			}
			names = found
			return &auditDomain.Result{StatusCode: http.StatusOK}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	result := &BulkRegenerateResult{Regenerated: []string{}, Failed: []string{}}
	for _, name := range uniqueNames(names) {
		_, err := r.executor.PerformWithAuditing(
			ctx,
			auditDomain.CredentialUpdate,
			func(txCtx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
				builder.SetCredentialName(name)
				credential, err := r.Regenerate(txCtx, actor, name, builder)
				if err != nil {
					return nil, err
				}
				return &auditDomain.Result{StatusCode: http.StatusOK, Body: credential}, nil
			},
		)
		if err != nil {
			r.logger.WarnContext(ctx, "failed to regenerate certificate",
				slog.String("credential_name", name),
				slog.String("signer_name", signerName),
				slog.Any("error", err),
			)
			result.Failed = append(result.Failed, name)
			continue
		}
		result.Regenerated = append(result.Regenerated, name)
	}
	return result, nil
}

// uniqueNames sorts names and drops case-insensitive duplicates.
func uniqueNames(names []string) []string {
	sorted := slices.Clone(names)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return slices.CompactFunc(sorted, strings.EqualFold)
}

// NewRegenerationEngine creates a new RegenerationEngine.
func NewRegenerationEngine(
	store CredentialStore,
	generator credentialService.CredentialGenerator,
	permissions PermissionChecker,
	executor auditUseCase.AuditedOperationExecutor,
	logger *slog.Logger,
) RegenerationEngine {
	return &regenerationEngine{
		store:       store,
		generator:   generator,
		permissions: permissions,
		executor:    executor,
		logger:      logger,
	}
}
