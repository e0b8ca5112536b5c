// Package domain defines the authenticated principal behind a request and the actor
// identifier derived from it.
package domain

// GrantType is the OAuth2 grant the bearer token was issued for.
type GrantType string

const (
	// PasswordGrant tokens act on behalf of a user.
	PasswordGrant GrantType = "password"

	// ClientCredentialsGrant tokens act on behalf of an OAuth2 client.
	ClientCredentialsGrant GrantType = "client_credentials"
)

// Actor prefixes keep user and client identities in separate namespaces.
const (
	UserActorPrefix   = "uaa-user:"
	ClientActorPrefix = "uaa-client:"
)

// Principal is the identity extracted from a verified bearer token.
type Principal struct {
	GrantType GrantType
	UserID    string
	ClientID  string
}

// Actor returns the identifier used in ACL entries and audit records.
func (p *Principal) Actor() string {
	if p.GrantType == PasswordGrant {
		return UserActorPrefix + p.UserID
	}
	return ClientActorPrefix + p.ClientID
}
