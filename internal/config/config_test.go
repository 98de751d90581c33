package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8089", cfg.ServerAddr())
	assert.Equal(t, "10.144.172.", cfg.Network.SubnetPrefix)
	assert.Equal(t, 20*time.Second, cfg.PollInterval())
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 60*time.Second, cfg.HandshakeTimeout())
	assert.Equal(t, "America/Chicago", cfg.Agent.Timezone)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	data := `
server:
  port: 9999
  bindAddress: 127.0.0.1
agent:
  baseUrl: http://agent:9000
  pollIntervalSeconds: 5
auth:
  handshakeTimeoutSeconds: 10
admin:
  name: Admin
  email: admin@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddr())
	assert.Equal(t, "http://agent:9000", cfg.Agent.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout())
	assert.Equal(t, "admin@example.com", cfg.Admin.Email)
	// untouched sections keep their defaults
	assert.Equal(t, "./data/portal.db", cfg.Storage.DatabasePath)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAgentZoneFallback(t *testing.T) {
	cfg := Default()
	cfg.Agent.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.AgentZone())
}
