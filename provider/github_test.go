package provider_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-github-auth-gateway/internal/errors"
	"github.com/jrsteele09/go-github-auth-gateway/provider"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testScope        = "public_repo,read:user,user:follow"
	testUserAgent    = "gateway-test"
)

func newClient(t *testing.T, serverURL string, timeout time.Duration) *provider.Client {
	t.Helper()
	c, err := provider.New(provider.Config{
		ClientID:       testClientID,
		ClientSecret:   testClientSecret,
		Scope:          testScope,
		AuthURL:        serverURL + "/login/oauth/authorize",
		TokenURL:       serverURL + "/login/oauth/access_token",
		APIURL:         serverURL,
		UserAgent:      testUserAgent,
		RequestTimeout: timeout,
	})
	require.NoError(t, err)
	return c
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := provider.New(provider.Config{ClientSecret: "s", Scope: "x"})
	require.Error(t, err)
	_, err = provider.New(provider.Config{ClientID: "c", Scope: "x"})
	require.Error(t, err)
	_, err = provider.New(provider.Config{ClientID: "c", ClientSecret: "s", Scope: " "})
	require.Error(t, err)
}

func TestAuthorizationURL(t *testing.T) {
	c, err := provider.New(provider.Config{ClientID: testClientID, ClientSecret: testClientSecret, Scope: testScope})
	require.NoError(t, err)

	raw := c.AuthorizationURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	require.Equal(t, "github.com", u.Host)
	require.Equal(t, "/login/oauth/authorize", u.Path)
	q := u.Query()
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testScope, q.Get("scope"))
	require.Equal(t, "state-123", q.Get("state"))
	require.Empty(t, q.Get("client_secret"))
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login/oauth/access_token", r.URL.Path)
		require.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "abc", r.PostForm.Get("code"))
		require.Equal(t, "state-123", r.PostForm.Get("state"))
		require.Equal(t, testClientID, r.PostForm.Get("client_id"))
		require.Equal(t, testClientSecret, r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "xyz",
			"token_type":   "bearer",
			"scope":        testScope,
		})
	}))
	defer srv.Close()

	tok, err := newClient(t, srv.URL, time.Second).ExchangeCode(context.Background(), "abc", "state-123")
	require.NoError(t, err)
	require.Equal(t, "xyz", tok.AccessToken)
}

func TestExchangeCodeFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"server_error"}`, wantStatus: 500},
		{name: "bad verification code", status: http.StatusOK, body: `{"error":"bad_verification_code"}`, wantStatus: 200},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newClient(t, srv.URL, time.Second).ExchangeCode(context.Background(), "abc", "s")
			require.Error(t, err)
			require.Equal(t, tt.wantStatus, provider.StatusCode(err))
			require.NotErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
		})
	}
}

func TestExchangeCodeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, 50*time.Millisecond).ExchangeCode(context.Background(), "abc", "s")
	require.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	require.Equal(t, 0, provider.StatusCode(err))
}

func TestValidateToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		if r.Header.Get("Authorization") != "bearer xyz" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Bad credentials","documentation_url":"https://docs.github.com"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id":42,"login":"octocat","name":"The Octocat"}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, time.Second)

	user, err := c.ValidateToken(context.Background(), "xyz")
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
	require.Equal(t, "octocat", user.Login)

	_, err = c.ValidateToken(context.Background(), "wrong")
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, provider.StatusCode(err))
	require.Contains(t, err.Error(), "Bad credentials")
	require.NotContains(t, err.Error(), "documentation_url")
}

func TestValidateTokenUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srvURL := srv.URL
	srv.Close()

	_, err := newClient(t, srvURL, time.Second).ValidateToken(context.Background(), "xyz")
	require.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestRevokeGrant(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "ok is not enough", status: http.StatusOK, wantErr: true},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: true},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				require.Equal(t, "/applications/"+testClientID+"/grant", r.URL.Path)
				user, pass, ok := r.BasicAuth()
				require.True(t, ok)
				require.Equal(t, testClientID, user)
				require.Equal(t, testClientSecret, pass)

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Equal(t, "xyz", body["access_token"])

				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newClient(t, srv.URL, time.Second).RevokeGrant(context.Background(), "xyz")
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, tt.status, provider.StatusCode(err))
		})
	}
}

func TestCallerDeadlineWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := newClient(t, srv.URL, time.Minute).RevokeGrant(ctx, "xyz")
	require.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	require.Less(t, time.Since(start), time.Second)
}
