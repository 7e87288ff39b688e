package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/sirupsen/logrus"
)

// Identity is the subset of ID token claims the service cares about
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IDTokenVerifier checks an ID token and returns the identity it carries
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*Identity, error)
}

// OIDCVerifier verifies Google ID tokens against the provider's published keys
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuerURL and builds a verifier
// for tokens issued to clientID
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider init: %w", err)
	}

	logrus.Infof("OIDC provider initialized (issuer: %s)", issuerURL)

	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// Verify implements IDTokenVerifier
func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	var id Identity
	if err := idToken.Claims(&id); err != nil {
		return nil, fmt.Errorf("parse oidc claims: %w", err)
	}
	id.Email = strings.ToLower(strings.TrimSpace(id.Email))
	return &id, nil
}
