package app

import (
	"fmt"
	"sync"

	authService "github.com/allisson/credstore/internal/auth/service"
)

type authComponents struct {
	tokenVerifier     authService.TokenVerifier
	tokenVerifierInit sync.Once
}

// TokenVerifier returns the bearer token verifier used by the API.
func (c *Container) TokenVerifier() (authService.TokenVerifier, error) {
	var err error
	c.tokenVerifierInit.Do(func() {
		c.tokenVerifier, err = c.initTokenVerifier()
		if err != nil {
			c.initErrors["tokenVerifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenVerifier"]; exists {
		return nil, storedErr
	}
	return c.tokenVerifier, nil
}

func (c *Container) initTokenVerifier() (authService.TokenVerifier, error) {
	verifier, err := authService.NewJWTTokenVerifier(c.config.AuthJWTSigningKey, c.config.AuthJWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	return verifier, nil
}
