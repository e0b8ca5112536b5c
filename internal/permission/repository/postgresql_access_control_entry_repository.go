// Package repository implements access control entry persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
)

// PostgreSQLAccessControlEntryRepository implements AccessControlEntry persistence for
// PostgreSQL. Credential names are matched case-insensitively.
type PostgreSQLAccessControlEntryRepository struct {
	db *sql.DB
}

// Create inserts a new entry.
func (p *PostgreSQLAccessControlEntryRepository) Create(
	ctx context.Context,
	entry *permissionDomain.AccessControlEntry,
) error {
	querier := database.GetTx(ctx, p.db)

	flags := toFlags(entry)
	query := `INSERT INTO access_entries (id, credential_name, actor, read_permission, write_permission,
			  delete_permission, read_acl_permission, write_acl_permission, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		entry.ID,
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
func (p *PostgreSQLAccessControlEntryRepository) Update(
	ctx context.Context,
	entry *permissionDomain.AccessControlEntry,
) error {
	querier := database.GetTx(ctx, p.db)

	flags := toFlags(entry)
	query := `UPDATE access_entries SET read_permission = $1, write_permission = $2, delete_permission = $3,
			  read_acl_permission = $4, write_acl_permission = $5
			  WHERE id = $6`

	_, err := querier.ExecContext(
		ctx,
		query,
		flags.read,
		flags.write,
		flags.delete,
		flags.readACL,
		flags.writeACL,
		entry.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update access control entry")
	}
	return nil
}

// Get returns every entry of credentialName ordered by actor.
func (p *PostgreSQLAccessControlEntryRepository) Get(
	ctx context.Context,
	credentialName string,
) ([]*permissionDomain.AccessControlEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, credential_name, actor, read_permission, write_permission, delete_permission,
			  read_acl_permission, write_acl_permission, created_at
			  FROM access_entries
			  WHERE LOWER(credential_name) = LOWER($1)
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
		var entry permissionDomain.AccessControlEntry
		var flags permissionFlags
		if err := rows.Scan(
			&entry.ID,
			&entry.CredentialName,
			&entry.Actor,
			&flags.read,
			&flags.write,
			&flags.delete,
			&flags.readACL,
			&flags.writeACL,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access control entry")
		}
		entry.Operations = flags.operations()
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access control entries")
	}

	return entries, nil
}

// GetEntry returns the entry of actor on credentialName or ErrResourceNotFound.
func (p *PostgreSQLAccessControlEntryRepository) GetEntry(
	ctx context.Context,
	credentialName, actor string,
) (*permissionDomain.AccessControlEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, credential_name, actor, read_permission, write_permission, delete_permission,
			  read_acl_permission, write_acl_permission, created_at
			  FROM access_entries
			  WHERE LOWER(credential_name) = LOWER($1) AND actor = $2`

	var entry permissionDomain.AccessControlEntry
	var flags permissionFlags
	err := querier.QueryRowContext(ctx, query, credentialName, actor).Scan(
		&entry.ID,
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
			return nil, permissionDomain.ErrResourceNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get access control entry")
	}

	entry.Operations = flags.operations()
	return &entry, nil
}

// DeleteEntry removes the entry of actor on credentialName and reports whether one existed.
func (p *PostgreSQLAccessControlEntryRepository) DeleteEntry(
	ctx context.Context,
	credentialName, actor string,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM access_entries WHERE LOWER(credential_name) = LOWER($1) AND actor = $2`

	result, err := querier.ExecContext(ctx, query, credentialName, actor)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete access control entry")
	}
	return affected(result)
}

// DeleteByCredentialName removes the whole ACL of credentialName.
func (p *PostgreSQLAccessControlEntryRepository) DeleteByCredentialName(
	ctx context.Context,
	credentialName string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM access_entries WHERE LOWER(credential_name) = LOWER($1)`

	if _, err := querier.ExecContext(ctx, query, credentialName); err != nil {
		return apperrors.Wrap(err, "failed to delete access control entries")
	}
	return nil
}

// NewPostgreSQLAccessControlEntryRepository creates a new PostgreSQL AccessControlEntry repository.
func NewPostgreSQLAccessControlEntryRepository(db *sql.DB) *PostgreSQLAccessControlEntryRepository {
	return &PostgreSQLAccessControlEntryRepository{db: db}
}
