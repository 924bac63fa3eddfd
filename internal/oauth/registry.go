// Package oauth wraps the third-party identity providers offered on the
// sign-in screen.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/spec-kit/backoffice-console/internal/config"
)

// Provider names a supported identity provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// ErrProviderDisabled is returned for a provider without credentials, or one
// the console does not know.
var ErrProviderDisabled = errors.New("oauth provider disabled")

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	githubUserInfoURL = "https://api.github.com/user"
)

// Identity is what the provider tells us about the user.
type Identity struct {
	Provider     Provider
	Subject      string
	Name         string
	Email        string
	Avatar       string
	AccessToken  string
	RefreshToken string
}

type provider struct {
	conf        *oauth2.Config
	userInfoURL string
	decode      func(gjson.Result) Identity
}

// Registry holds the enabled providers.
type Registry struct {
	providers  map[Provider]*provider
	httpClient *http.Client
}

// Option customizes a Registry.
type Option func(*Registry)

// WithHTTPClient sets the client used for token exchange and user info.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Registry) {
		r.httpClient = hc
	}
}

// WithEndpoint points an enabled provider at different authorization, token
// and user info URLs.
func WithEndpoint(p Provider, endpoint oauth2.Endpoint, userInfoURL string) Option {
	return func(r *Registry) {
		if prov, ok := r.providers[p]; ok {
			prov.conf.Endpoint = endpoint
			prov.userInfoURL = userInfoURL
		}
	}
}

// NewRegistry enables each provider whose client id and secret are set.
// Callbacks land on {RedirectBaseURL}/oauth/{provider}/callback.
func NewRegistry(cfg config.OAuthConfig, opts ...Option) *Registry {
	base := strings.TrimRight(cfg.RedirectBaseURL, "/")
	r := &Registry{
		providers:  make(map[Provider]*provider),
		httpClient: http.DefaultClient,
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		r.providers[ProviderGoogle] = &provider{
			conf: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  fmt.Sprintf("%s/oauth/%s/callback", base, ProviderGoogle),
				Scopes:       []string{"openid", "email", "profile"},
			},
			userInfoURL: googleUserInfoURL,
			decode:      decodeGoogle,
		}
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		r.providers[ProviderGitHub] = &provider{
			conf: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				Endpoint:     github.Endpoint,
				RedirectURL:  fmt.Sprintf("%s/oauth/%s/callback", base, ProviderGitHub),
				Scopes:       []string{"read:user", "user:email"},
			},
			userInfoURL: githubUserInfoURL,
			decode:      decodeGitHub,
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enabled lists the configured providers in name order.
func (r *Registry) Enabled() []Provider {
	out := make([]Provider, 0, len(r.providers))
	for p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup fails with ErrProviderDisabled for providers that cannot be used.
func (r *Registry) Lookup(name string) (Provider, error) {
	p := Provider(strings.ToLower(name))
	if _, ok := r.providers[p]; !ok {
		return "", fmt.Errorf("%w: %s", ErrProviderDisabled, name)
	}
	return p, nil
}

// StateToken returns a random CSRF state value.
func (r *Registry) StateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL is where the browser is sent to consent.
func (r *Registry) AuthURL(p Provider, state string) (string, error) {
	prov, ok := r.providers[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProviderDisabled, p)
	}
	return prov.conf.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// Exchange trades the authorization code for tokens and reads the user's
// identity from the provider.
func (r *Registry) Exchange(ctx context.Context, p Provider, code string) (Identity, error) {
	prov, ok := r.providers[p]
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s", ErrProviderDisabled, p)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	tok, err := prov.conf.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange %s code: %w", p, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, prov.userInfoURL, nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := prov.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch %s user info: %w", p, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Identity{}, fmt.Errorf("read %s user info: %w", p, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("fetch %s user info: status %d", p, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return Identity{}, fmt.Errorf("fetch %s user info: invalid json", p)
	}

	id := prov.decode(gjson.ParseBytes(body))
	id.Provider = p
	id.AccessToken = tok.AccessToken
	id.RefreshToken = tok.RefreshToken
	return id, nil
}

func decodeGoogle(r gjson.Result) Identity {
	return Identity{
		Subject: r.Get("sub").String(),
		Name:    r.Get("name").String(),
		Email:   r.Get("email").String(),
		Avatar:  r.Get("picture").String(),
	}
}

func decodeGitHub(r gjson.Result) Identity {
	name := r.Get("login").String()
	if name == "" {
		name = r.Get("name").String()
	}
	return Identity{
		Subject: r.Get("id").String(),
		Name:    name,
		Email:   r.Get("email").String(),
		Avatar:  r.Get("avatar_url").String(),
	}
}
