// Package service verifies bearer tokens and turns them into principals.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
)

// minSigningKeyLength matches the HS256 key size.
const minSigningKeyLength = 32

// Claims are the UAA-style claims carried by access tokens.
type Claims struct {
	jwt.RegisteredClaims
	GrantType string `json:"grant_type"`
	UserID    string `json:"user_id,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	// Verify returns the principal of a valid token. Every failure wraps ErrUnauthorized.
	Verify(token string) (*authDomain.Principal, error)
}

// JWTTokenVerifier verifies HS256 tokens and can issue them for local tooling.
type JWTTokenVerifier struct {
	signingKey []byte
	issuer     string
}

// Verify parses and validates token.
func (j *JWTTokenVerifier) Verify(token string) (*authDomain.Principal, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		options = append(options, jwt.WithIssuer(j.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return j.signingKey, nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authDomain.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", authDomain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	principal := &authDomain.Principal{
		GrantType: authDomain.GrantType(claims.GrantType),
		UserID:    claims.UserID,
		ClientID:  claims.ClientID,
	}
	switch principal.GrantType {
	case authDomain.PasswordGrant:
		if principal.UserID == "" {
			return nil, authDomain.ErrUnsupportedGrant
		}
	case authDomain.ClientCredentialsGrant:
		if principal.ClientID == "" {
			return nil, authDomain.ErrUnsupportedGrant
		}
	default:
		return nil, authDomain.ErrUnsupportedGrant
	}
	return principal, nil
}

// Issue signs a token for principal valid for ttl.
func (j *JWTTokenVerifier) Issue(principal *authDomain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   principal.Actor(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		GrantType: string(principal.GrantType),
		UserID:    principal.UserID,
		ClientID:  principal.ClientID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// NewJWTTokenVerifier creates a verifier for tokens signed with signingKey. An empty
// issuer accepts any issuer.
func NewJWTTokenVerifier(signingKey, issuer string) (*JWTTokenVerifier, error) {
	if len(signingKey) < minSigningKeyLength {
		return nil, authDomain.ErrInvalidSigningKey
	}
	return &JWTTokenVerifier{signingKey: []byte(signingKey), issuer: issuer}, nil
}
