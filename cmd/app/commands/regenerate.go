package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
)

// RunRegenerate stores a new version of a generated credential as actor. The operation
// is audited as credential_update exactly as the API endpoint is.
func RunRegenerate(
	ctx context.Context,
	executor auditUseCase.AuditedOperationExecutor,
	engine credentialUseCase.RegenerationEngine,
	logger *slog.Logger,
	writer io.Writer,
	actor, name string,
) error {
	if actor == "" {
		return fmt.Errorf("actor is required")
	}

	name, err := credentialDomain.NormalizeName(name)
	if err != nil {
		return err
	}

	ctx = withCLIRequestInfo(ctx, actor, "regenerate")
	result, err := executor.PerformWithAuditing(ctx, auditDomain.CredentialUpdate,
		func(ctx context.Context, builder *auditDomain.RecordBuilder) (*auditDomain.Result, error) {
			builder.SetCredentialName(name)
			credential, err := engine.Regenerate(ctx, actor, name, builder)
			if err != nil {
				return nil, err
			}
			builder.SetCredentialName(credential.Name)
			return &auditDomain.Result{StatusCode: http.StatusOK, Body: credential}, nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to regenerate %s: %w", name, err)
	}

	credential := result.Body.(*credentialDomain.Credential)
	logger.Info("credential regenerated",
		slog.String("name", credential.Name),
		slog.String("version_id", credential.ID.String()),
	)
	_, _ = fmt.Fprintf(writer, "Regenerated %s (version %s)\n", credential.Name, credential.ID)
	return nil
}

// RunBulkRegenerate regenerates every certificate signed by signedBy as actor. Each
// certificate is audited on its own; any failure makes the command fail after the others
// were attempted.
func RunBulkRegenerate(
	ctx context.Context,
	engine credentialUseCase.RegenerationEngine,
	logger *slog.Logger,
	writer io.Writer,
	actor, signedBy, format string,
) error {
	if actor == "" {
		return fmt.Errorf("actor is required")
	}

	signedBy, err := credentialDomain.NormalizeName(signedBy)
	if err != nil {
		return err
	}

	ctx = withCLIRequestInfo(ctx, actor, "bulk-regenerate")
	result, err := engine.BulkRegenerate(ctx, actor, signedBy)
	if err != nil {
		return fmt.Errorf("failed to regenerate certificates signed by %s: %w", signedBy, err)
	}

	if format == "json" {
		jsonBytes, err := json.MarshalIndent(map[string]any{
			"regenerated_credentials": nonNil(result.Regenerated),
			"failed_credentials":      nonNil(result.Failed),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, _ = fmt.Fprintln(writer, string(jsonBytes))
	} else {
		_, _ = fmt.Fprintf(writer, "Certificates signed by %s\n\n", signedBy)
		_, _ = fmt.Fprintf(writer, "Regenerated: %d\n", len(result.Regenerated))
		for _, name := range result.Regenerated {
			_, _ = fmt.Fprintf(writer, "  - %s\n", name)
		}
		_, _ = fmt.Fprintf(writer, "Failed:      %d\n", len(result.Failed))
		for _, name := range result.Failed {
			_, _ = fmt.Fprintf(writer, "  - %s\n", name)
		}
	}

	logger.Info("bulk regeneration completed",
		slog.String("signed_by", signedBy),
		slog.Int("regenerated", len(result.Regenerated)),
		slog.Int("failed", len(result.Failed)),
	)

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d certificate(s) could not be regenerated", len(result.Failed))
	}
	return nil
}

func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
