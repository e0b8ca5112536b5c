package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records what the credential store does, independent of transport.
type BusinessMetrics interface {
	// RecordOperation counts a use case call. Domains are "credential", "permission"
	// and "audit"; status is "success" or "error" ("failure" and "audit_unavailable"
	// for the audit domain).
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long a use case call took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordAuditRecord counts a committed audit record by operation code and outcome.
	RecordAuditRecord(ctx context.Context, operation string, success bool)

	// RecordAuditFailure counts an operation rolled back because its audit record could
	// not be committed.
	RecordAuditFailure(ctx context.Context, operation string)

	// RecordBulkRegeneration counts the certificates a bulk regeneration reissued and
	// the ones it could not.
	RecordBulkRegeneration(ctx context.Context, regenerated, failed int)
}

type businessMetrics struct {
	operationCounter metric.Int64Counter
	durationHisto    metric.Float64Histogram
	auditRecords     metric.Int64Counter
	auditFailures    metric.Int64Counter
	bulkRegeneration metric.Int64Counter
}

// NewBusinessMetrics creates the instruments under namespace (e.g. "credstore").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	auditRecords, err := meter.Int64Counter(
		fmt.Sprintf("%s_audit_records_total", namespace),
		metric.WithDescription("Total number of committed audit records"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit record counter: %w", err)
	}

	auditFailures, err := meter.Int64Counter(
		fmt.Sprintf("%s_audit_failures_total", namespace),
		metric.WithDescription("Total number of operations rolled back because auditing failed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit failure counter: %w", err)
	}

	bulkRegeneration, err := meter.Int64Counter(
		fmt.Sprintf("%s_bulk_regenerated_credentials_total", namespace),
		metric.WithDescription("Certificates processed by bulk regeneration"),
		metric.WithUnit("{credential}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk regeneration counter: %w", err)
	}

	return &businessMetrics{
		operationCounter: operationCounter,
		durationHisto:    durationHisto,
		auditRecords:     auditRecords,
		auditFailures:    auditFailures,
		bulkRegeneration: bulkRegeneration,
	}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("domain", domain),
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

func (b *businessMetrics) RecordAuditRecord(ctx context.Context, operation string, success bool) {
	b.auditRecords.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("success", success),
		),
	)
}

func (b *businessMetrics) RecordAuditFailure(ctx context.Context, operation string) {
	b.auditFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func (b *businessMetrics) RecordBulkRegeneration(ctx context.Context, regenerated, failed int) {
	if regenerated > 0 {
		b.bulkRegeneration.Add(ctx, int64(regenerated),
			metric.WithAttributes(attribute.String("outcome", "regenerated")))
	}
	if failed > 0 {
		b.bulkRegeneration.Add(ctx, int64(failed),
			metric.WithAttributes(attribute.String("outcome", "failed")))
	}
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordAuditRecord(ctx context.Context, operation string, success bool) {}

func (n *NoOpBusinessMetrics) RecordAuditFailure(ctx context.Context, operation string) {}

func (n *NoOpBusinessMetrics) RecordBulkRegeneration(ctx context.Context, regenerated, failed int) {}
