// Package config loads client settings from an optional YAML file, a .env file
// and ADMINPANEL_* environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath points at the YAML file when --config is not given.
const EnvConfigPath = "ADMINPANEL_CONFIG"

// Backend selects where the session is persisted.
type Backend string

const (
	BackendFile    Backend = "file"
	BackendRedis   Backend = "redis"
	BackendKeyring Backend = "keyring"
	BackendMemory  Backend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for Backend.
func (b *Backend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch Backend(v) {
	case BackendFile, BackendRedis, BackendKeyring, BackendMemory:
		*b = Backend(v)
		return nil
	default:
		return fmt.Errorf("invalid session backend: %q (valid options: file, redis, keyring, memory)", v)
	}
}

// APIConfig describes how to reach the backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout"  env:"TIMEOUT"`
}

// SessionConfig selects and tunes the session store.
type SessionConfig struct {
	Backend Backend `yaml:"backend" env:"BACKEND"`

	// Dir holds session.json for the file backend. Empty means ~/.adminpanel.
	Dir string `yaml:"dir" env:"DIR"`

	RedisAddr     string        `yaml:"redis_addr"     env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"REDIS_DB"`
	RedisPrefix   string        `yaml:"redis_prefix"   env:"REDIS_PREFIX"`
	RedisTTL      time.Duration `yaml:"redis_ttl"      env:"REDIS_TTL"`

	KeyringService string `yaml:"keyring_service" env:"KEYRING_SERVICE"`
}

// UIConfig tunes rendering.
type UIConfig struct {
	Theme      string        `yaml:"theme"       env:"THEME"`
	MessageTTL time.Duration `yaml:"message_ttl" env:"MESSAGE_TTL"`
}

// LogConfig tunes the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file"   env:"FILE"`
}

// Config is the full client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"     envPrefix:"ADMINPANEL_API_"`
	Session SessionConfig `yaml:"session" envPrefix:"ADMINPANEL_SESSION_"`
	UI      UIConfig      `yaml:"ui"      envPrefix:"ADMINPANEL_UI_"`
	Log     LogConfig     `yaml:"log"     envPrefix:"ADMINPANEL_LOG_"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		API: APIConfig{BaseURL: "http://localhost:8080/api"},
		Session: SessionConfig{
			Backend:        BackendFile,
			RedisAddr:      "localhost:6379",
			RedisPrefix:    "adminpanel:",
			KeyringService: "adminpanel",
		},
		UI:  UIConfig{Theme: "classic", MessageTTL: 5 * time.Second},
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Load builds the configuration. path may be empty, in which case
// $ADMINPANEL_CONFIG or ~/.adminpanel/config.yaml is tried; only an explicitly
// named file has to exist.
func Load(path string) (Config, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if !explicit {
		path = defaultPath()
	}
	if path != "" {
		if err := readFile(path, &cfg, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".adminpanel", "config.yaml")
}

func readFile(path string, cfg *Config, mustExist bool) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Sanitize applies guardrails to loaded values.
func (c *Config) Sanitize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = Default().API.BaseURL
	}
	if c.API.Timeout < 0 {
		c.API.Timeout = 0
	}
	if c.Session.Backend == "" {
		c.Session.Backend = BackendFile
	}
	if c.UI.MessageTTL < time.Second {
		c.UI.MessageTTL = Default().UI.MessageTTL
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}
