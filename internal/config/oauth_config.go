package config

import (
	"errors"
	"strings"
	"time"
)

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetScope() string
	GetRedirectURL() string
	GetAuthURL() string
	GetTokenURL() string
	GetAPIURL() string
	GetUserAgent() string
	GetUpstreamTimeout() time.Duration
	GetConsumeState() bool
	GetStateLength() int
}

// OAuth holds the GitHub OAuth App credentials and endpoints.
type OAuth struct {
	ClientID        string        `env:"GITHUB_CLIENT_ID,required,notEmpty"`
	ClientSecret    string        `env:"GITHUB_CLIENT_SECRET,required,notEmpty"`
	Scope           string        `env:"OAUTH_SCOPE" envDefault:"public_repo,read:user,user:follow"`
	RedirectURL     string        `env:"OAUTH_REDIRECT_URL"`
	AuthURL         string        `env:"GITHUB_AUTH_URL" envDefault:"https://github.com/login/oauth/authorize"`
	TokenURL        string        `env:"GITHUB_TOKEN_URL" envDefault:"https://github.com/login/oauth/access_token"`
	APIURL          string        `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	UserAgent       string        `env:"GITHUB_USER_AGENT" envDefault:"go-github-auth-gateway"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	ConsumeState    bool          `env:"OAUTH_CONSUME_STATE" envDefault:"true"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string     { return o.ClientID }
func (o OAuth) GetClientSecret() string { return o.ClientSecret }
func (o OAuth) GetScope() string        { return o.Scope }
func (o OAuth) GetRedirectURL() string  { return o.RedirectURL }
func (o OAuth) GetAuthURL() string      { return o.AuthURL }
func (o OAuth) GetTokenURL() string     { return o.TokenURL }
func (o OAuth) GetAPIURL() string       { return strings.TrimRight(o.APIURL, "/") }
func (o OAuth) GetUserAgent() string    { return o.UserAgent }
func (o OAuth) GetConsumeState() bool   { return o.ConsumeState }

func (o OAuth) GetUpstreamTimeout() time.Duration {
	return o.UpstreamTimeout
}

// GetStateLength is the number of random bytes behind each state value.
func (OAuth) GetStateLength() int {
	return 20
}

func (o OAuth) validate() error {
	if strings.TrimSpace(o.Scope) == "" {
		return errors.New("OAUTH_SCOPE must not be empty")
	}
	if o.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}
