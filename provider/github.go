package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/jrsteele09/go-github-auth-gateway/internal/config"
)

const (
	defaultAPIURL         = "https://api.github.com"
	defaultRequestTimeout = 10 * time.Second
	acceptGitHubJSON      = "application/vnd.github+json"

	// Upper bound on error bodies read from GitHub.
	maxErrorBodyBytes = 4 << 10
)

// Config holds the GitHub OAuth App settings.
type Config struct {
	ClientID     string
	ClientSecret string

	// Scope is sent verbatim as the single scope parameter (GitHub accepts comma separated lists).
	Scope       string
	RedirectURL string

	// AuthURL and TokenURL default to GitHub's OAuth endpoints.
	AuthURL  string
	TokenURL string

	// APIURL defaults to https://api.github.com.
	APIURL    string
	UserAgent string

	// RequestTimeout bounds every call to GitHub (default: 10s).
	RequestTimeout time.Duration

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// User is the identity GitHub reports for a valid token.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Client implements the gateway's side of the GitHub OAuth App flow.
type Client struct {
	oauth          *oauth2.Config
	httpClient     *http.Client
	apiURL         string
	requestTimeout time.Duration
}

// New creates a GitHub client. ClientID, ClientSecret and Scope are required.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("[provider New] client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("[provider New] client secret is required")
	}
	if strings.TrimSpace(cfg.Scope) == "" {
		return nil, errors.New("[provider New] scope is required")
	}

	endpoint := oauth2.Endpoint{
		AuthURL:   oauthgithub.Endpoint.AuthURL,
		TokenURL:  oauthgithub.Endpoint.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if cfg.UserAgent != "" {
		// GitHub rejects API calls without a User-Agent
		withUA := *httpClient
		withUA.Transport = &userAgentTransport{base: httpClient.Transport, userAgent: cfg.UserAgent}
		httpClient = &withUA
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{cfg.Scope},
			Endpoint:     endpoint,
		},
		httpClient:     httpClient,
		apiURL:         apiURL,
		requestTimeout: requestTimeout,
	}, nil
}

// NewFromConfig creates a GitHub client from the loaded OAuth configuration.
func NewFromConfig(c config.OAuthConfig) (*Client, error) {
	return New(Config{
		ClientID:       c.GetClientID(),
		ClientSecret:   c.GetClientSecret(),
		Scope:          c.GetScope(),
		RedirectURL:    c.GetRedirectURL(),
		AuthURL:        c.GetAuthURL(),
		TokenURL:       c.GetTokenURL(),
		APIURL:         c.GetAPIURL(),
		UserAgent:      c.GetUserAgent(),
		RequestTimeout: c.GetUpstreamTimeout(),
	})
}

// AuthorizationURL returns the GitHub authorize URL carrying the client ID, scope and state.
func (c *Client) AuthorizationURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ensureContextTimeout adds the request timeout unless ctx already has a deadline.
func (c *Client) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// ExchangeCode trades an authorization code for an access token. The state value is
// echoed to GitHub alongside the client credentials.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*oauth2.Token, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	var opts []oauth2.AuthCodeOption
	if state != "" {
		opts = append(opts, oauth2.SetAuthURLParam("state", state))
	}

	token, err := c.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			statusErr := &StatusError{Operation: "exchange code", Message: retrieveErr.ErrorCode}
			if retrieveErr.Response != nil {
				statusErr.StatusCode = retrieveErr.Response.StatusCode
			}
			return nil, statusErr
		}
		return nil, classifyTransportError("exchange code", err)
	}
	return token, nil
}

// ValidateToken asks GitHub who owns accessToken. Any status but 200 is a *StatusError.
func (c *Client) ValidateToken(ctx context.Context, accessToken string) (*User, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("validate token: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+accessToken)
	req.Header.Set("Accept", acceptGitHubJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("validate token", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("validate token", resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("validate token: failed to decode user: %w", err)
	}
	return &user, nil
}

// RevokeGrant deletes the application's grant for the user who owns accessToken.
// The call authenticates with the client credentials; only 204 counts as success.
func (c *Client) RevokeGrant(ctx context.Context, accessToken string) error {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return fmt.Errorf("revoke grant: failed to encode body: %w", err)
	}

	endpoint := c.apiURL + "/applications/" + url.PathEscape(c.oauth.ClientID) + "/grant"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("revoke grant: failed to create request: %w", err)
	}
	req.SetBasicAuth(c.oauth.ClientID, c.oauth.ClientSecret)
	req.Header.Set("Accept", acceptGitHubJSON)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError("revoke grant", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return newStatusError("revoke grant", resp)
	}
	return nil
}

// newStatusError keeps GitHub's short "message" field and drops the rest of the body.
func newStatusError(operation string, resp *http.Response) *StatusError {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodyBytes)).Decode(&payload)
	return &StatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Message:    payload.Message,
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return base.RoundTrip(clone)
}
