package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the agent configuration, loaded once at startup and
// immutable for the process lifetime.
type Config struct {
	// Mode selects the output format: rfc3164, rfc5424 or custom.
	Mode string `yaml:"mode"`
	// CustomTemplate is the token template used when Mode is custom.
	CustomTemplate string `yaml:"custom_template"`

	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Protocol string `yaml:"protocol"`

	// Hostname and AppName override the values placed in the syslog
	// header; when empty the local hostname and the record's provider
	// name are used.
	Hostname string `yaml:"hostname"`
	AppName  string `yaml:"app_name"`

	MaxQueue       int `yaml:"max_queue"`
	SendBatchSize  int `yaml:"send_batch_size"`
	SendIntervalMs int `yaml:"send_interval_ms"`

	Channels    []string       `yaml:"channels"`
	FacilityMap map[string]int `yaml:"facility_map"`

	// SourceRoot is the directory holding one <channel>.log file per
	// configured channel.
	SourceRoot string `yaml:"source_root"`
	// BookmarkDir is where per-channel resume tokens are persisted.
	BookmarkDir string `yaml:"bookmark_dir"`
}

// Load reads the YAML file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Mode:           "rfc3164",
		Protocol:       "udp",
		Port:           514,
		MaxQueue:       10000,
		SendBatchSize:  100,
		SendIntervalMs: 1000,
		SourceRoot:     "/var/log/eventlog",
		BookmarkDir:    "/var/lib/evlog/bookmarks",
	}
}

func (c *Config) applyEnv() {
	c.Server = getEnv("EVLOG_SERVER", c.Server)
	c.Port = getEnvAsInt("EVLOG_PORT", c.Port)
	c.Protocol = getEnv("EVLOG_PROTOCOL", c.Protocol)
	c.Mode = getEnv("EVLOG_MODE", c.Mode)
	c.Hostname = getEnv("EVLOG_HOSTNAME", c.Hostname)
	c.SourceRoot = getEnv("EVLOG_SOURCE_ROOT", c.SourceRoot)
	c.BookmarkDir = getEnv("EVLOG_BOOKMARK_DIR", c.BookmarkDir)
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "rfc3164", "rfc5424":
	case "custom":
		if c.CustomTemplate == "" {
			return fmt.Errorf("mode custom requires custom_template")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.Protocol != "udp" && c.Protocol != "tcp" {
		return fmt.Errorf("unknown protocol %q", c.Protocol)
	}
	if c.Server == "" {
		return fmt.Errorf("server must be set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("at least one channel must be configured")
	}
	if c.MaxQueue <= 0 || c.SendBatchSize <= 0 || c.SendIntervalMs <= 0 {
		return fmt.Errorf("max_queue, send_batch_size and send_interval_ms must be positive")
	}
	return nil
}

func (c *Config) SendInterval() time.Duration {
	return time.Duration(c.SendIntervalMs) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}
