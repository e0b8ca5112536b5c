package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	"github.com/allisson/credstore/internal/database"
	apperrors "github.com/allisson/credstore/internal/errors"
)

// MySQLCredentialRepository implements Credential persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLCredentialRepository struct {
	db *sql.DB
}

// Create inserts a new credential version.
func (m *MySQLCredentialRepository) Create(ctx context.Context, credential *credentialDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	id, err := credential.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	params, err := marshalParameters(credential.GenerationParameters)
	if err != nil {
		return err
	}

	query := `INSERT INTO credentials (id, name, kind, encryption_key_id, ciphertext, nonce,
			  generation_parameters, signer_name, version_created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLCredentialRepository) FindMostRecent(
	ctx context.Context,
	name string,
) (*credentialDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, kind, encryption_key_id, ciphertext, nonce, generation_parameters,
			  signer_name, version_created_at
			  FROM credentials
			  WHERE LOWER(name) = LOWER(?)
			  ORDER BY version_created_at DESC, id DESC
			  LIMIT 1`

	var credential credentialDomain.Credential
	var id []byte
	var kind string
	var params []byte
	var signerName sql.NullString
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&id,
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

	if credential.ID, err = uuid.FromBytes(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
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
func (m *MySQLCredentialRepository) FindAllCertificateNamesBySigner(
	ctx context.Context,
	signerName string,
) ([]string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT DISTINCT name FROM credentials
			  WHERE kind = ? AND LOWER(signer_name) = LOWER(?)
			  ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query, string(credentialDomain.CertificateKind), signerName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find certificates by signer")
	}
	return scanNames(rows)
}

// Exists reports whether any version of name exists.
func (m *MySQLCredentialRepository) Exists(ctx context.Context, name string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (SELECT 1 FROM credentials WHERE LOWER(name) = LOWER(?))`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check credential existence")
	}
	return exists, nil
}

// DeleteByName removes every version of name and reports whether any existed.
func (m *MySQLCredentialRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM credentials WHERE LOWER(name) = LOWER(?)`

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

// NewMySQLCredentialRepository creates a new MySQL Credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
