package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/credstore/internal/audit/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// MySQLAuditRecordRepository implements AuditRecord persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLAuditRecordRepository struct {
	db *sql.DB
}

// Create inserts the record using the transaction in ctx.
func (m *MySQLAuditRecordRepository) Create(ctx context.Context, record *auditDomain.AuditRecord) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit record id")
	}

	events, err := marshalEvents(record.Events)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_records (id, request_id, credential_name, operation, actor, path, method,
			  success, status_code, events, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAuditRecordRepository) ListByTimeRange(
	ctx context.Context,
	start, end time.Time,
	offset, limit int,
) ([]*auditDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, request_id, credential_name, operation, actor, path, method, success,
			  status_code, events, signature, created_at
			  FROM audit_records
			  WHERE created_at >= ? AND created_at <= ?
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

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
		var id []byte
		var operation string
		var events []byte

		err := rows.Scan(
			&id,
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

		if record.ID, err = uuid.FromBytes(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit record id")
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

// NewMySQLAuditRecordRepository creates a new MySQL AuditRecord repository.
func NewMySQLAuditRecordRepository(db *sql.DB) *MySQLAuditRecordRepository {
	return &MySQLAuditRecordRepository{db: db}
}
