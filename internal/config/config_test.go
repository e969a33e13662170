package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
mode: rfc5424
server: collector.example.com
port: 6514
protocol: tcp
hostname: gw01
app_name: evlog
max_queue: 500
send_batch_size: 50
send_interval_ms: 250
channels:
  - System
  - Application
facility_map:
  System: 16
  Application: 17
source_root: /srv/logs
bookmark_dir: /srv/bookmarks
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rfc5424", cfg.Mode)
	assert.Equal(t, "collector.example.com", cfg.Server)
	assert.Equal(t, 6514, cfg.Port)
	assert.Equal(t, "tcp", cfg.Protocol)
	assert.Equal(t, []string{"System", "Application"}, cfg.Channels)
	assert.Equal(t, 17, cfg.FacilityMap["Application"])
	assert.Equal(t, 250*time.Millisecond, cfg.SendInterval())
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server: 10.0.0.1
channels: [System]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rfc3164", cfg.Mode)
	assert.Equal(t, "udp", cfg.Protocol)
	assert.Equal(t, 514, cfg.Port)
	assert.Equal(t, 10000, cfg.MaxQueue)
	assert.Equal(t, 100, cfg.SendBatchSize)
	assert.Equal(t, time.Second, cfg.SendInterval())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server: 10.0.0.1
channels: [System]
`)

	t.Setenv("EVLOG_SERVER", "10.0.0.2")
	t.Setenv("EVLOG_PORT", "1514")
	t.Setenv("EVLOG_PROTOCOL", "tcp")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2", cfg.Server)
	assert.Equal(t, 1514, cfg.Port)
	assert.Equal(t, "tcp", cfg.Protocol)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing server", "channels: [System]"},
		{"no channels", "server: h"},
		{"bad mode", "server: h\nchannels: [System]\nmode: xml"},
		{"bad protocol", "server: h\nchannels: [System]\nprotocol: sctp"},
		{"custom without template", "server: h\nchannels: [System]\nmode: custom"},
		{"bad port", "server: h\nchannels: [System]\nport: 99999"},
		{"zero batch", "server: h\nchannels: [System]\nsend_batch_size: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
