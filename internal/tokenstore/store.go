// Package tokenstore persists the bearer token of a console session in one of
// three interchangeable key-value backends.
package tokenstore

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-console/internal/config"
)

// TokenKey is the key the access token is stored under.
const TokenKey = "token"

// Store is a string key-value store. Get returns an empty string and no
// error when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Scoped prefixes every key before delegating, so one shared server-side
// store can hold the tokens of many sessions.
func Scoped(store Store, prefix string) Store {
	return scopedStore{store: store, prefix: prefix}
}

type scopedStore struct {
	store  Store
	prefix string
}

func (s scopedStore) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, s.prefix+key)
}

func (s scopedStore) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.prefix+key, value)
}

func (s scopedStore) Remove(ctx context.Context, key string) error {
	return s.store.Remove(ctx, s.prefix+key)
}

// Factory hands out the configured backend for one request.
type Factory struct {
	backend config.StorageBackend
	shared  Store
	cookie  config.CookieConfig
}

// NewFactory builds a factory. shared serves the local and session backends
// and may be nil when the cookie backend is selected.
func NewFactory(backend config.StorageBackend, shared Store, cookie config.CookieConfig) *Factory {
	return &Factory{backend: backend, shared: shared, cookie: cookie}
}

// Backend reports the selected backend.
func (f *Factory) Backend() config.StorageBackend {
	return f.backend
}

// For returns the store for the session bound to c.
func (f *Factory) For(c *fiber.Ctx, sessionID string) Store {
	if f.backend == config.StorageCookie || f.shared == nil {
		return NewCookieStore(c, f.cookie)
	}
	return Scoped(f.shared, "session:"+sessionID+":")
}
