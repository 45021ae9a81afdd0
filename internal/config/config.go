// Package config loads the console configuration from a YAML file with
// GRADEDESK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Servers ServersConfig `mapstructure:"servers"`
	XAI     XAIConfig     `mapstructure:"xai"`
	Server  ServerConfig  `mapstructure:"server"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Runner  RunnerConfig  `mapstructure:"runner"`
}

// ServersConfig holds the script path of each MCP tool server. An empty path
// disables the corresponding client; calls against it fail with a
// configuration error.
type ServersConfig struct {
	Essay   string `mapstructure:"essay"`
	Bubble  string `mapstructure:"bubble"`
	Latex   string `mapstructure:"latex"`
	Testgen string `mapstructure:"testgen"`
	Email   string `mapstructure:"email"`
	Regrade string `mapstructure:"regrade"`
	Scrub   string `mapstructure:"scrub"`
}

// XAIConfig configures the Grok evaluation API.
type XAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig enables the redis-backed workflow session store. When disabled
// the in-memory store is used.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig controls logger behaviour.
type LoggingConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// RunnerConfig describes how tool-server subprocesses are launched.
type RunnerConfig struct {
	Command     string `mapstructure:"command"`     // defaults to "uv"
	Interpreter string `mapstructure:"interpreter"` // defaults to "python"
}

// envOverrides maps GRADEDESK_* variables onto config keys. Kept explicit so
// the set of recognized variables is greppable.
var envOverrides = map[string]string{
	"GRADEDESK_ESSAY_SERVER_PATH":   "servers.essay",
	"GRADEDESK_BUBBLE_SERVER_PATH":  "servers.bubble",
	"GRADEDESK_LATEX_SERVER_PATH":   "servers.latex",
	"GRADEDESK_TESTGEN_SERVER_PATH": "servers.testgen",
	"GRADEDESK_EMAIL_SERVER_PATH":   "servers.email",
	"GRADEDESK_REGRADE_SERVER_PATH": "servers.regrade",
	"GRADEDESK_SCRUB_SERVER_PATH":   "servers.scrub",
	"GRADEDESK_XAI_API_KEY":         "xai.api_key",
	"GRADEDESK_XAI_MODEL":           "xai.model",
	"GRADEDESK_XAI_BASE_URL":        "xai.base_url",
	"GRADEDESK_SERVER_ADDR":         "server.addr",
	"GRADEDESK_REDIS_ADDR":          "redis.addr",
	"GRADEDESK_LOG_LEVEL":           "logging.level",
}

// Load reads the configuration file at path (optional) and applies
// environment overrides. A missing path yields pure defaults + env.
func Load(path string) (*Config, error) {
	raw := map[string]any{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	for env, key := range envOverrides {
		if val, ok := os.LookupEnv(env); ok {
			setNested(raw, key, val)
		}
	}

	cfg := defaults()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true, // env values arrive as strings
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		XAI: XAIConfig{
			Model:   "grok-2-1212",
			BaseURL: "https://api.x.ai/v1",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7860",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Runner: RunnerConfig{
			Command:     "uv",
			Interpreter: "python",
		},
	}
}

// setNested writes value at a dotted key into a nested map, creating
// intermediate maps as needed.
func setNested(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Validate performs basic sanity checks.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must not be empty")
	}

	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("redis.addr must be set when redis is enabled")
	}

	if c.Redis.DB < 0 {
		return errors.New("redis.db must be >= 0")
	}

	return nil
}

// ServerPath returns the configured script path for a service name, or ""
// when the service is unknown or unconfigured.
func (c *Config) ServerPath(service string) string {
	switch service {
	case "essay":
		return c.Servers.Essay
	case "bubble":
		return c.Servers.Bubble
	case "latex":
		return c.Servers.Latex
	case "testgen":
		return c.Servers.Testgen
	case "email":
		return c.Servers.Email
	case "regrade":
		return c.Servers.Regrade
	case "scrub":
		return c.Servers.Scrub
	default:
		return ""
	}
}
