package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/backoffice-console/internal/events"
	"github.com/spec-kit/backoffice-console/internal/observability"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	NewAuditService(dispatcher, zap.New(core), metrics).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventSignedIn, "sid-1", events.Actor{UserName: "admin"}, events.SignInPayload{Method: "credentials"})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventSignInFailed, "sid-1", events.Actor{UserName: "admin"}, nil)))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "session.signed_in", entries[0].Message)
	assert.Equal(t, "admin", entries[0].ContextMap()["user"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	count, err := testutil.GatherAndCount(metrics.Registry(), "console_session_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
