package repository

import (
	"database/sql"
	"encoding/json"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
	apperrors "github.com/allisson/credstore/internal/errors"
)

func marshalParameters(params *credentialDomain.GenerationParameters) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal generation parameters")
	}
	return data, nil
}

func unmarshalParameters(data []byte) (*credentialDomain.GenerationParameters, error) {
	if data == nil {
		return nil, nil
	}
	var params credentialDomain.GenerationParameters
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal generation parameters")
	}
	return &params, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer func() {
		_ = rows.Close()
	}()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential name")
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate credential names")
	}
	return names, nil
}
