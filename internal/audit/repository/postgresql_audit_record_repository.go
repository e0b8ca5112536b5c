// Package repository implements audit record persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// PostgreSQLAuditRecordRepository implements AuditRecord persistence for PostgreSQL.
type PostgreSQLAuditRecordRepository struct {
	db *sql.DB
}

// Create inserts the record using the transaction in ctx. Events are stored as JSONB,
// NULL when there are none.
func (p *PostgreSQLAuditRecordRepository) Create(ctx context.Context, record *auditDomain.AuditRecord) error {
	querier := database.GetTx(ctx, p.db)

	events, err := marshalEvents(record.Events)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_records (id, request_id, credential_name, operation, actor, path, method,
			  success, status_code, events, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.RequestID,
		record.CredentialName,
		string(record.Operation),
		record.Actor,
		record.Path,
		record.Method,
		record.Success,
		record.StatusCode,
		events,
		record.Signature,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}

	return nil
}

// ListByTimeRange returns records created within [start, end], oldest first.
func (p *PostgreSQLAuditRecordRepository) ListByTimeRange(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, request_id, credential_name, operation, actor, path, method, success,
			  status_code, events, signature, created_at
			  FROM audit_records
			  WHERE created_at >= $1 AND created_at <= $2
			  ORDER BY created_at ASC, id ASC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, start, end, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*auditDomain.AuditRecord, 0)
	for rows.Next() {
		var record auditDomain.AuditRecord
		var operation string
		var events []byte

		err := rows.Scan(
			&record.ID,
			&record.RequestID,
			&record.CredentialName,
			&operation,
			&record.Actor,
			&record.Path,
			&record.Method,
			&record.Success,
			&record.StatusCode,
			&events,
			&record.Signature,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit record")
		}

		record.Operation = auditDomain.OperationCode(operation)
		if record.Events, err = unmarshalEvents(events); err != nil {
			return nil, err
		}
		record.CreatedAt = record.CreatedAt.UTC()

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}

	return records, nil
}

func marshalEvents(events []auditDomain.EventParameters) ([]byte, error) {
	if len(events) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(events)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit record events")
	}
	return data, nil
}

func unmarshalEvents(data []byte) ([]auditDomain.EventParameters, error) {
	if data == nil {
		return nil, nil
	}
	var events []auditDomain.EventParameters
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit record events")
	}
	return events, nil
}

// NewPostgreSQLAuditRecordRepository creates a new PostgreSQL AuditRecord repository.
func NewPostgreSQLAuditRecordRepository(db *sql.DB) *PostgreSQLAuditRecordRepository {
	return &PostgreSQLAuditRecordRepository{db: db}
}
