package oauth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/spec-kit/backoffice-console/internal/config"
)

func TestRegistryEnablesOnlyConfiguredProviders(t *testing.T) {
	r := NewRegistry(config.OAuthConfig{
		RedirectBaseURL:    "https://console.example.com/",
		GitHubClientID:     "gh-id",
		GitHubClientSecret: "gh-secret",
		GoogleClientID:     "only-id",
	})
	assert.Equal(t, []Provider{ProviderGitHub}, r.Enabled())

	_, err := r.Lookup("google")
	assert.ErrorIs(t, err, ErrProviderDisabled)
	_, err = r.Lookup("gitlab")
	assert.ErrorIs(t, err, ErrProviderDisabled)

	p, err := r.Lookup("GitHub")
	require.NoError(t, err)
	assert.Equal(t, ProviderGitHub, p)

	_, err = r.AuthURL(ProviderGoogle, "state")
	assert.ErrorIs(t, err, ErrProviderDisabled)
	_, err = r.Exchange(context.Background(), ProviderGoogle, "code")
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestAuthURLCarriesStateAndCallback(t *testing.T) {
	r := NewRegistry(config.OAuthConfig{
		RedirectBaseURL:    "https://console.example.com",
		GoogleClientID:     "g-id",
		GoogleClientSecret: "g-secret",
	})
	state, err := r.StateToken()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	raw, err := r.AuthURL(ProviderGoogle, state)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "https://console.example.com/oauth/google/callback", u.Query().Get("redirect_uri"))
	assert.Equal(t, "g-id", u.Query().Get("client_id"))
}

func TestExchangeReadsIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"gh-token","token_type":"bearer","refresh_token":"gh-refresh"}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id":42,"login":"octo","email":"octo@example.com","avatar_url":"https://img/octo.png"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRegistry(config.OAuthConfig{
		RedirectBaseURL:    "http://localhost",
		GitHubClientID:     "gh-id",
		GitHubClientSecret: "gh-secret",
	},
		WithHTTPClient(srv.Client()),
		WithEndpoint(ProviderGitHub, oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token"}, srv.URL+"/user"),
	)

	id, err := r.Exchange(context.Background(), ProviderGitHub, "the-code")
	require.NoError(t, err)
	assert.Equal(t, Identity{
		Provider:     ProviderGitHub,
		Subject:      "42",
		Name:         "octo",
		Email:        "octo@example.com",
		Avatar:       "https://img/octo.png",
		AccessToken:  "gh-token",
		RefreshToken: "gh-refresh",
	}, id)
}

func TestExchangeFailsOnUserInfoError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRegistry(config.OAuthConfig{GoogleClientID: "id", GoogleClientSecret: "secret"},
		WithHTTPClient(srv.Client()),
		WithEndpoint(ProviderGoogle, oauth2.Endpoint{TokenURL: srv.URL + "/token"}, srv.URL+"/user"),
	)
	_, err := r.Exchange(context.Background(), ProviderGoogle, "code")
	assert.Error(t, err)
}
