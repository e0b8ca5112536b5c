package domain

import (
	"github.com/allisson/credstore/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidToken indicates a bearer token that cannot be verified.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrExpiredToken indicates a bearer token past its expiry.
	ErrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "token has expired")

	// ErrUnsupportedGrant indicates a token without a usable identity for its grant type.
	ErrUnsupportedGrant = errors.Wrap(errors.ErrUnauthorized, "unsupported token grant")

	// ErrInvalidSigningKey indicates a token signing key shorter than 32 bytes.
	ErrInvalidSigningKey = errors.New("token signing key must be at least 32 bytes")
)
