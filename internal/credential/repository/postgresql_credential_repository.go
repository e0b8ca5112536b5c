// Package repository implements credential version persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// PostgreSQLCredentialRepository implements Credential persistence for PostgreSQL.
// Every save inserts a new version row; names are matched case-insensitively.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new credential version.
func (p *PostgreSQLCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	params, err := marshalParameters(credential.GenerationParameters)
	if err != nil {
		return err
	}

	query := `INSERT INTO credentials (id, name, kind, encryption_key_id, ciphertext, nonce,
			  generation_parameters, signer_name, version_created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		credential.ID,
		credential.Name,
		string(credential.Kind),
		credential.EncryptionKeyID,
		credential.Ciphertext,
		credential.Nonce,
		params,
		nullString(credential.SignerName),
		credential.VersionCreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// FindMostRecent returns the newest version of name or ErrCredentialNotFound.
func (p *PostgreSQLCredentialRepository) FindMostRecent(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, kind, encryption_key_id, ciphertext, nonce, generation_parameters,
			  signer_name, version_created_at
			  FROM credentials
			  WHERE LOWER(name) = LOWER($1)
			  ORDER BY version_created_at DESC, id DESC
			  LIMIT 1`

	var credential credentialDomain.Credential
	var kind string
	var params []byte
	var signerName sql.NullString
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&credential.ID,
		&credential.Name,
		&kind,
		&credential.EncryptionKeyID,
		&credential.Ciphertext,
		&credential.Nonce,
		&params,
		&signerName,
		&credential.VersionCreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, credentialDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find credential")
	}

	credential.Kind = credentialDomain.Kind(kind)
	credential.SignerName = signerName.String
	if credential.GenerationParameters, err = unmarshalParameters(params); err != nil {
		return nil, err
	}
	return &credential, nil
}

// FindAllCertificateNamesBySigner returns the distinct names of certificates with any
// version signed by signerName.
func (p *PostgreSQLCredentialRepository) FindAllCertificateNamesBySigner(
	ctx context.Context,
	signerName string,
) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT name FROM credentials
			  WHERE kind = $1 AND LOWER(signer_name) = LOWER($2)
			  ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query, string(credentialDomain.CertificateKind), signerName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find certificates by signer")
	}
	return scanNames(rows)
}

// Exists reports whether any version of name exists.
func (p *PostgreSQLCredentialRepository) Exists(ctx context.Context, name string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (SELECT 1 FROM credentials WHERE LOWER(name) = LOWER($1))`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check credential existence")
	}
	return exists, nil
}

// DeleteByName removes every version of name and reports whether any existed.
func (p *PostgreSQLCredentialRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM credentials WHERE LOWER(name) = LOWER($1)`

	result, err := querier.ExecContext(ctx, query, name)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to delete credential")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rows > 0, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL Credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
