package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/backoffice-console/internal/api/dto"
	"github.com/spec-kit/backoffice-console/internal/api/http/handlers"
	"github.com/spec-kit/backoffice-console/internal/auth"
	"github.com/spec-kit/backoffice-console/internal/backend"
	"github.com/spec-kit/backoffice-console/internal/config"
	"github.com/spec-kit/backoffice-console/internal/domain"
	"github.com/spec-kit/backoffice-console/internal/events"
	"github.com/spec-kit/backoffice-console/internal/oauth"
	"github.com/spec-kit/backoffice-console/internal/observability"
	"github.com/spec-kit/backoffice-console/internal/service"
	"github.com/spec-kit/backoffice-console/internal/session"
	"github.com/spec-kit/backoffice-console/internal/tokenstore"
)

// fakeBackend answers like the upstream API. Tokens map to roles.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sign-in", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		user := r.PostForm.Get("email")
		if r.PostForm.Get("password") != "123Qwe" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"tok-`+user+`","user":{"userName":"`+user+`","authority":["`+user+`"]}}`)
	})
	mux.HandleFunc("/api/sign-out", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"email":"someone@example.com"}}`)
	})
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok-expired" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"items":[{"id":1,"title":"Desk","price":"99.5"}],"meta":{"total":1}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type consoleClient struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
	authSvc *service.AuthService
}

func newConsole(t *testing.T) *consoleClient {
	t.Helper()
	srv := fakeBackend(t)
	logger := zap.NewNop()
	cfg := config.Config{
		App: config.AppConfig{Name: "console", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:                "secret",
			AuthenticatedEntryPath:   "/home",
			UnauthenticatedEntryPath: "/sign-in",
			AccessDeniedPath:         "/access-denied",
			RedirectURLKey:           "redirectUrl",
			AuthorityOpenDefault:     true,
		},
		Backend: config.BackendConfig{BaseURL: srv.URL, APIPrefix: "/api", ProfilePath: "/profile", TimeoutSeconds: 5},
		Storage: config.StorageConfig{Backend: config.StorageCookie, Cookie: config.CookieConfig{SameSite: "strict"}},
		Session: config.SessionConfig{CookieName: "console_sid", TTLMinutes: 60, State: config.StateMemory},
	}

	metrics := observability.NewMetrics()
	states := session.NewMemoryStateRepository()
	api := backend.NewClient(cfg.Backend, logger)
	authSvc := service.NewAuthService(context.Background(), cfg, service.AuthDependencies{
		Backend: api, States: states, Dispatcher: events.NewInMemoryDispatcher(), Logger: logger, Metrics: metrics,
	})
	providers := oauth.NewRegistry(cfg.OAuth)
	guard := auth.NewGuard(auth.NewResolver(true), cfg.Auth, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Minute)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("console", "test", nil),
		Auth:    handlers.NewAuthHandler(authSvc, providers, cfg.Auth),
		OAuth:   handlers.NewOAuthHandler(authSvc, providers, cfg.Auth, cfg.Storage.Cookie, logger),
		Session: handlers.NewSessionHandler(guard, cfg.Auth),
		Resources: map[string]CRUD{
			"products": handlers.NewResourceHandler[domain.Product, dto.ProductRequest](
				service.NewResourceService(service.Products, api, authSvc, logger, metrics), "redirectUrl"),
			"users": handlers.NewResourceHandler[domain.User, dto.UserRequest](
				service.NewResourceService(service.Users, api, authSvc, logger, metrics), "redirectUrl"),
		},
		SessionMiddleware: auth.NewSessionMiddleware(auth.NewTokenManager("secret", time.Hour),
			tokenstore.NewFactory(config.StorageCookie, nil, cfg.Storage.Cookie), states, cfg.Session, cfg.Storage.Cookie, logger),
		Guard:   guard,
		Metrics: metrics,
		Logger:  logger,
	})
	return &consoleClient{t: t, app: app, cookies: map[string]*http.Cookie{}, authSvc: authSvc}
}

func (cc *consoleClient) do(req *http.Request) (*http.Response, []byte) {
	cc.t.Helper()
	for _, ck := range cc.cookies {
		req.AddCookie(ck)
	}
	resp, err := cc.app.Test(req, -1)
	require.NoError(cc.t, err)
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(cc.cookies, ck.Name)
			continue
		}
		cc.cookies[ck.Name] = ck
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(cc.t, err)
	return resp, body
}

func (cc *consoleClient) get(path string) (*http.Response, []byte) {
	return cc.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cc *consoleClient) signIn(user, password, redirect string) (*http.Response, dto.AuthResult) {
	cc.t.Helper()
	payload, _ := json.Marshal(map[string]string{"userName": user, "password": password})
	target := "/sign-in"
	if redirect != "" {
		target += "?redirectUrl=" + url.QueryEscape(redirect)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, body := cc.do(req)
	var res dto.AuthResult
	require.NoError(cc.t, json.Unmarshal(body, &res))
	cc.authSvc.Wait()
	return resp, res
}

func TestSignInThenNavigate(t *testing.T) {
	cc := newConsole(t)

	resp, _ := cc.get("/products")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in?redirectUrl=%2Fproducts", resp.Header.Get("Location"))

	resp, res := cc.signIn("operator", "123Qwe", "/products")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.AuthResult{Status: "success", Redirect: "/products"}, res)

	resp, body := cc.get("/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"list":[{"id":"1","name":"Desk","price":99.5,"stock":0}],"total":1}`, string(body))

	resp, _ = cc.get("/users")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/access-denied", resp.Header.Get("Location"))

	_, body = cc.get("/session")
	assert.Contains(t, string(body), `"authenticated":true`)
	assert.Contains(t, string(body), `someone@example.com`)

	resp, _ = cc.get("/sign-in")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/home", resp.Header.Get("Location"))
}

func TestNavigationIsFilteredByRole(t *testing.T) {
	cc := newConsole(t)
	cc.signIn("seller", "123Qwe", "")

	_, body := cc.get("/navigation")
	var nav struct {
		Items []domain.NavigationItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &nav))

	var paths []string
	var walk func([]domain.NavigationItem)
	walk = func(items []domain.NavigationItem) {
		for _, item := range items {
			if item.Path != "" {
				paths = append(paths, item.Path)
			}
			walk(item.Children)
		}
	}
	walk(nav.Items)
	assert.Equal(t, []string{"/home", "/categories", "/products"}, paths)
}

func TestFailedSignInReportsServerMessage(t *testing.T) {
	cc := newConsole(t)
	resp, res := cc.signIn("admin", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, dto.AuthResult{Status: "failed", Message: "Invalid credentials"}, res)

	_, body := cc.get("/session")
	assert.Contains(t, string(body), `"signedIn":false`)
}

func TestSignInValidation(t *testing.T) {
	cc := newConsole(t)
	req := httptest.NewRequest(http.MethodPost, "/sign-in", strings.NewReader(`{"userName":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := cc.do(req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"VALIDATION_FAILED"`)
	assert.Contains(t, string(body), `"userName"`)
}

func TestSignOutReturnsToRoot(t *testing.T) {
	cc := newConsole(t)
	cc.signIn("admin", "123Qwe", "")

	req := httptest.NewRequest(http.MethodPost, "/sign-out", nil)
	resp, _ := cc.do(req)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, _ = cc.get("/home")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestBackendUnauthorizedExpiresSession(t *testing.T) {
	cc := newConsole(t)
	cc.signIn("admin", "123Qwe", "")
	cc.cookies[tokenstore.TokenKey] = &http.Cookie{Name: tokenstore.TokenKey, Value: "tok-expired"}

	resp, body := cc.get("/products")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "session expired")

	_, body = cc.get("/session")
	assert.Contains(t, string(body), `"signedIn":false`)

	resp, _ = cc.get("/products")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestExpiredTokenCookieDropsSignedInState(t *testing.T) {
	cc := newConsole(t)
	cc.signIn("admin", "123Qwe", "")
	delete(cc.cookies, tokenstore.TokenKey)

	_, body := cc.get("/session")
	assert.Contains(t, string(body), `"signedIn":false`)
	assert.NotContains(t, string(body), `"admin"`)

	resp, _ := cc.get("/sign-in")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDisabledOAuthProvider(t *testing.T) {
	cc := newConsole(t)
	resp, body := cc.get("/oauth/google")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"OAUTH_PROVIDER_DISABLED"`)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	cc := newConsole(t)
	resp, body := cc.get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"NOT_FOUND"`)
}

func TestHealthAndMetrics(t *testing.T) {
	cc := newConsole(t)
	resp, _ := cc.get("/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := cc.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "console_http_requests_total")
}
