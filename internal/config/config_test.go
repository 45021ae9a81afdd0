package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "grok-2-1212", cfg.XAI.Model)
	assert.Equal(t, "https://api.x.ai/v1", cfg.XAI.BaseURL)
	assert.Equal(t, "127.0.0.1:7860", cfg.Server.Addr)
	assert.Equal(t, "uv", cfg.Runner.Command)
	assert.Equal(t, "python", cfg.Runner.Interpreter)
	assert.Empty(t, cfg.Servers.Essay, "server paths have no default")
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
servers:
  essay: /opt/edmcp/server.py
  bubble: ~/edmcp-bubble/server.py
xai:
  api_key: test-key
server:
  addr: 0.0.0.0:9000
redis:
  enabled: true
  addr: redis:6379
  db: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/edmcp/server.py", cfg.Servers.Essay)
	assert.Equal(t, "~/edmcp-bubble/server.py", cfg.Servers.Bubble)
	assert.Equal(t, "test-key", cfg.XAI.APIKey)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Redis.DB)

	// Unset fields keep their defaults.
	assert.Equal(t, "grok-2-1212", cfg.XAI.Model)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
servers:
  essay: /opt/edmcp/server.py
logging:
  level: info
`)

	t.Setenv("GRADEDESK_ESSAY_SERVER_PATH", "/override/server.py")
	t.Setenv("GRADEDESK_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/override/server.py", cfg.Servers.Essay)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("Bad Log Level", func(t *testing.T) {
		_, err := Load(writeConfig(t, "logging:\n  level: loud\n"))
		assert.Error(t, err)
	})

	t.Run("Redis Enabled Without Addr", func(t *testing.T) {
		_, err := Load(writeConfig(t, "redis:\n  enabled: true\n  addr: \"\"\n"))
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yaml")
		assert.Error(t, err)
	})
}

func TestServerPath(t *testing.T) {
	cfg := &Config{Servers: ServersConfig{Essay: "/a", Scrub: "/b"}}
	assert.Equal(t, "/a", cfg.ServerPath("essay"))
	assert.Equal(t, "/b", cfg.ServerPath("scrub"))
	assert.Empty(t, cfg.ServerPath("unknown"))
}
