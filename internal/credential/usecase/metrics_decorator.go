package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	"github.com/allisson/credstore/internal/metrics"
)

func recordMetrics(
	ctx context.Context,
	m metrics.BusinessMetrics,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, "credential", operation, status)
	m.RecordDuration(ctx, "credential", operation, time.Since(start), status)
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Set records metrics for storing user-supplied values.
func (c *credentialUseCaseWithMetrics) Set(
	ctx context.Context,
	actor string,
	request *credentialDomain.SetRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Set(ctx, actor, request, events)
	recordMetrics(ctx, c.metrics, "credential_set", start, err)
	return credential, err
}

// Generate records metrics for generated values.
func (c *credentialUseCaseWithMetrics) Generate(
	ctx context.Context,
	actor string,
	request *credentialDomain.GenerationRequest,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Generate(ctx, actor, request, events)
	recordMetrics(ctx, c.metrics, "credential_generate", start, err)
	return credential, err
}

// Get records metrics for credential reads.
func (c *credentialUseCaseWithMetrics) Get(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	credential, err := c.next.Get(ctx, actor, name, events)
	recordMetrics(ctx, c.metrics, "credential_get", start, err)
	return credential, err
}

// Interpolate records metrics for service bindings interpolation.
func (c *credentialUseCaseWithMetrics) Interpolate(
	ctx context.Context,
	actor string,
	document map[string]any,
	events auditDomain.EventRecorder,
) (map[string]any, error) {
	start := time.Now()
	interpolated, err := c.next.Interpolate(ctx, actor, document, events)
	recordMetrics(ctx, c.metrics, "credential_interpolate", start, err)
	return interpolated, err
}

// Delete records metrics for credential deletions.
func (c *credentialUseCaseWithMetrics) Delete(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) error {
	start := time.Now()
	err := c.next.Delete(ctx, actor, name, events)
	recordMetrics(ctx, c.metrics, "credential_delete", start, err)
	return err
}

// regenerationEngineWithMetrics decorates RegenerationEngine with metrics instrumentation.
type regenerationEngineWithMetrics struct {
	next    RegenerationEngine
	metrics metrics.BusinessMetrics
}

// NewRegenerationEngineWithMetrics wraps a RegenerationEngine with metrics recording.
func NewRegenerationEngineWithMetrics(engine RegenerationEngine, m metrics.BusinessMetrics) RegenerationEngine {
	return &regenerationEngineWithMetrics{
		next:    engine,
		metrics: m,
	}
}

// Regenerate records metrics for single regenerations.
func (r *regenerationEngineWithMetrics) Regenerate(
	ctx context.Context,
	actor, name string,
	events auditDomain.EventRecorder,
) (*credentialDomain.Credential, error) {
	start := time.Now()
	credential, err := r.next.Regenerate(ctx, actor, name, events)
	recordMetrics(ctx, r.metrics, "credential_regenerate", start, err)
	return credential, err
}

// BulkRegenerate records metrics for bulk regenerations.
func (r *regenerationEngineWithMetrics) BulkRegenerate(
	ctx context.Context,
	actor, signerName string,
) (*BulkRegenerateResult, error) {
	start := time.Now()
	result, err := r.next.BulkRegenerate(ctx, actor, signerName)
	recordMetrics(ctx, r.metrics, "credential_bulk_regenerate", start, err)
	if result != nil {
		r.metrics.RecordBulkRegeneration(ctx, len(result.Regenerated), len(result.Failed))
	}
	return result, err
}
