package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_TTL", "")
	t.Setenv("MESSAGE_LIST_LIMIT", "")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Minute, cfg.Session.ReapInterval)
	assert.Equal(t, 500, cfg.Session.MessageListLimit)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("SESSION_REAP_INTERVAL", "30s")
	t.Setenv("MESSAGE_LIST_LIMIT", "50")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 48*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Session.ReapInterval)
	assert.Equal(t, 50, cfg.Session.MessageListLimit)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.IsProduction())
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("POLL_CACHE_TTL", "soon")
	t.Setenv("SESSION_TTL", "-5h")

	cfg := Load()

	assert.Equal(t, 2*time.Second, cfg.Session.PollCacheTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
}

func TestTracingSettings(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_SAMPLE_RATIO", "")

	cfg := Load()
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)

	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4318")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg = Load()
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "jaeger:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)

	t.Setenv("OTEL_SAMPLE_RATIO", "3")
	assert.Equal(t, 1.0, Load().Tracing.SampleRatio)
}
