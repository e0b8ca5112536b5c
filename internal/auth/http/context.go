// Package http provides the authentication middleware of the API: bearer-token
// verification, request information for auditing and per-actor rate limiting.
package http

import (
	"context"

	authDomain "github.com/allisson/credstore/internal/auth/domain"
)

// principalKey is a context key type for storing authenticated principals.
type principalKey struct{}

// WithPrincipal stores an authenticated principal in the context.
func WithPrincipal(ctx context.Context, principal *authDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
func GetPrincipal(ctx context.Context) (*authDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*authDomain.Principal)
	return principal, ok && principal != nil
}

// GetActor returns the actor of the authenticated principal in ctx.
func GetActor(ctx context.Context) (string, bool) {
	principal, ok := GetPrincipal(ctx)
	if !ok {
		return "", false
	}
	return principal.Actor(), true
}
