package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"CONFIG_FILE", "HTTP_ADDR", "IFRAME_ORIGIN", "DISPLAY_SIZE", "SUBMIT_POLICY",
	"EMIT_PROGRESS_EVENTS", "RESULT_SIGNING_KEY", "DB_DRIVER", "DB_DSN",
	"RABBITMQ_URI", "RABBITMQ_EXCHANGE", "SINK_TIMEOUT",
}

// clearEnv unsets every key for the test and restores the old values after.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.IframeOrigins)
	assert.Equal(t, 4, cfg.DisplaySize)
	assert.Equal(t, "manual", cfg.SubmitPolicy)
	assert.False(t, cfg.EmitProgressEvents)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "matchgame.events", cfg.RabbitMQExchange)
	assert.Equal(t, 5*time.Second, cfg.SinkTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("IFRAME_ORIGIN", " https://a.example , https://b.example ")
	t.Setenv("DISPLAY_SIZE", "6")
	t.Setenv("EMIT_PROGRESS_EVENTS", "yes")
	t.Setenv("SINK_TIMEOUT", "250ms")
	t.Setenv("DB_DRIVER", "none")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.IframeOrigins)
	assert.Equal(t, 6, cfg.DisplaySize)
	assert.True(t, cfg.EmitProgressEvents)
	assert.Equal(t, 250*time.Millisecond, cfg.SinkTimeout)
	assert.Equal(t, "none", cfg.DBDriver)
}

func TestFromEnv_BadNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISPLAY_SIZE", "-2")
	t.Setenv("SINK_TIMEOUT", "soon")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.DisplaySize)
	assert.Equal(t, 5*time.Second, cfg.SinkTimeout)
}

func TestFromEnv_YAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "matchgame.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
iframe_origin:
  - https://lms.example
  - https://preview.example
submit_policy: on_complete
display_size: 5
http_addr: ":9000"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":7000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://lms.example", "https://preview.example"}, cfg.IframeOrigins)
	assert.Equal(t, "on_complete", cfg.SubmitPolicy)
	assert.Equal(t, 5, cfg.DisplaySize)
	assert.Equal(t, ":7000", cfg.HTTPAddr, "env wins over file")
}

func TestFromEnv_BadOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := FromEnv()
	assert.Error(t, err)
}
