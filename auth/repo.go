package auth

import (
	"context"

	"github.com/jrsteele09/go-github-auth-gateway/provider"
	"golang.org/x/oauth2"
)

var _ IdentityProvider = (*provider.Client)(nil)

// IdentityProvider is the remote side of the authorization code flow.
type IdentityProvider interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code, state string) (*oauth2.Token, error)
	ValidateToken(ctx context.Context, accessToken string) (*provider.User, error)
	RevokeGrant(ctx context.Context, accessToken string) error
}
