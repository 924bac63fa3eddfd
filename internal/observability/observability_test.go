package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/spec-kit/backoffice-console/pkg/util"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordSignIn("credentials", "success")
		m.RecordBackendRetry("GET")
		m.RecordShape("websites", "none")
		m.RecordEnrichment("merged")
		m.RecordSessionEvent("signed_in")
	})
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordSignIn("credentials", "failed")
	m.RecordSignIn("credentials", "failed")
	m.RecordShape("products", "items")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.signIns.WithLabelValues("credentials", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shapes.WithLabelValues("products", "items")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "console_sign_ins_total")
}

func TestRequestLoggerUsesErrorStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString(RequestID(c)) })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.NewNotFound("website", nil) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	_, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/missing", "GET", "404")))
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, isDevelopment("Development"))
	assert.False(t, isDevelopment(strings.ToLower("production")))
}
