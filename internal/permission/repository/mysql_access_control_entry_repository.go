package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// MySQLAccessControlEntryRepository implements AccessControlEntry persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLAccessControlEntryRepository struct {
	db *sql.DB
}

// Create inserts a new entry.
func (m *MySQLAccessControlEntryRepository) Create(
	ctx context.Context,
	entry *permissionDomain.AccessControlEntry,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal access control entry id")
	}

	flags := toFlags(entry)
	query := `INSERT INTO access_entries (id, credential_name, actor, read_permission, write_permission,
			  delete_permission, read_acl_permission, write_acl_permission, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		entry.CredentialName,
		entry.Actor,
		flags.read,
		flags.write,
		flags.delete,
		flags.readACL,
		flags.writeACL,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create access control entry")
	}
	return nil
}

// Update replaces the operations of an existing entry.
func (m *MySQLAccessControlEntryRepository) Update(
	ctx context.Context,
	entry *permissionDomain.AccessControlEntry,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal access control entry id")
	}

	flags := toFlags(entry)
	query := `UPDATE access_entries SET read_permission = ?, write_permission = ?, delete_permission = ?,
			  read_acl_permission = ?, write_acl_permission = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		flags.read,
		flags.write,
		flags.delete,
		flags.readACL,
		flags.writeACL,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update access control entry")
	}
	return nil
}

// Get returns every entry of credentialName ordered by actor.
func (m *MySQLAccessControlEntryRepository) Get(
	ctx context.Context,
	credentialName string,
) ([]*permissionDomain.AccessControlEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, credential_name, actor, read_permission, write_permission, delete_permission,
			  read_acl_permission, write_acl_permission, created_at
			  FROM access_entries
			  WHERE LOWER(credential_name) = LOWER(?)
			  ORDER BY actor ASC`

	rows, err := querier.QueryContext(ctx, query, credentialName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get access control entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*permissionDomain.AccessControlEntry, 0)
	for rows.Next() {
		entry, err := m.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access control entries")
	}

	return entries, nil
}

// GetEntry returns the entry of actor on credentialName or ErrResourceNotFound.
func (m *MySQLAccessControlEntryRepository) GetEntry(
	ctx context.Context,
	credentialName, actor string,
) (*permissionDomain.AccessControlEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, credential_name, actor, read_permission, write_permission, delete_permission,
			  read_acl_permission, write_acl_permission, created_at
			  FROM access_entries
			  WHERE LOWER(credential_name) = LOWER(?) AND actor = ?`

	entry, err := m.scan(querier.QueryRowContext(ctx, query, credentialName, actor))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, permissionDomain.ErrResourceNotFound
		}
		return nil, err
	}
	return entry, nil
}

// DeleteEntry removes the entry of actor on credentialName and reports whether one existed.
func (m *MySQLAccessControlEntryRepository) DeleteEntry(
	ctx context.Context,
	credentialName, actor string,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM access_entries WHERE LOWER(credential_name) = LOWER(?) AND actor = ?`

	result, err := querier.ExecContext(ctx, query, credentialName, actor)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete access control entry")
	}
	return affected(result)
}

// DeleteByCredentialName removes the whole ACL of credentialName.
func (m *MySQLAccessControlEntryRepository) DeleteByCredentialName(
	ctx context.Context,
	credentialName string,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM access_entries WHERE LOWER(credential_name) = LOWER(?)`

	if _, err := querier.ExecContext(ctx, query, credentialName); err != nil {
		return apperrors.Wrap(err, "failed to delete access control entries")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (m *MySQLAccessControlEntryRepository) scan(row rowScanner) (*permissionDomain.AccessControlEntry, error) {
	var entry permissionDomain.AccessControlEntry
	var id []byte
	var flags permissionFlags
	err := row.Scan(
		&id,
		&entry.CredentialName,
		&entry.Actor,
		&flags.read,
		&flags.write,
		&flags.delete,
		&flags.readACL,
		&flags.writeACL,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan access control entry")
	}

	if entry.ID, err = uuid.FromBytes(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal access control entry id")
	}
	entry.Operations = flags.operations()
	return &entry, nil
}

// NewMySQLAccessControlEntryRepository creates a new MySQL AccessControlEntry repository.
func NewMySQLAccessControlEntryRepository(db *sql.DB) *MySQLAccessControlEntryRepository {
	return &MySQLAccessControlEntryRepository{db: db}
}
