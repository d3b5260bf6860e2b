/*
Package google verifies Google Sign-In ID tokens for the OAuth login flow.

Verification is delegated to Google's public JWKS through the idtoken
package; the TokenVerifier interface exists so handlers can be tested
without network access.
*/
package google

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// Identity holds the subset of Google ID token claims the server cares about.
type Identity struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// TokenVerifier validates a raw Google ID token and resolves the identity it asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// Verifier is the production TokenVerifier backed by Google's token validation endpoint.
type Verifier struct {
	clientID string
}

// NewVerifier returns a Verifier that accepts only tokens issued for the given OAuth client ID.
func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify validates the token signature and audience, then extracts the identity claims.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, err
	}

	sub, _ := payload.Claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("google token payload missing subject")
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &Identity{
		GoogleID: sub,
		Email:    email,
		Name:     name,
		Picture:  picture,
	}, nil
}
