package tokenstore

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-console/internal/config"
)

const pendingLocalPrefix = "tokenstore.cookie."

type pendingCookie struct {
	value   string
	removed bool
}

// CookieStore keeps values in HTTP-only browser cookies. Writes made during a
// request are visible to reads later in the same request.
type CookieStore struct {
	c   *fiber.Ctx
	cfg config.CookieConfig
}

// NewCookieStore binds a cookie store to the current request.
func NewCookieStore(c *fiber.Ctx, cfg config.CookieConfig) *CookieStore {
	return &CookieStore{c: c, cfg: cfg}
}

func (s *CookieStore) Get(_ context.Context, key string) (string, error) {
	if pending, ok := s.c.Locals(pendingLocalPrefix + key).(pendingCookie); ok {
		if pending.removed {
			return "", nil
		}
		return pending.value, nil
	}
	return strings.Clone(s.c.Cookies(key)), nil
}

func (s *CookieStore) Set(_ context.Context, key, value string) error {
	s.c.Cookie(s.cookie(key, value, time.Now().Add(s.cfg.Expiry())))
	s.c.Locals(pendingLocalPrefix+key, pendingCookie{value: value})
	return nil
}

func (s *CookieStore) Remove(_ context.Context, key string) error {
	cookie := s.cookie(key, "", time.Now().Add(-24*time.Hour))
	cookie.MaxAge = -1
	s.c.Cookie(cookie)
	s.c.Locals(pendingLocalPrefix+key, pendingCookie{removed: true})
	return nil
}

func (s *CookieStore) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.cfg.Domain,
		Expires:  expires,
		Secure:   s.cfg.Secure,
		HTTPOnly: true,
		SameSite: s.cfg.SameSite,
	}
}
