package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. PORTFOLIO_SERVER_ADDR.
const EnvPrefix = "PORTFOLIO_"

// Config is the runtime configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Site     SiteConfig     `koanf:"site"`
	Session  SessionConfig  `koanf:"session"`
	Menu     MenuConfig     `koanf:"menu"`
	DB       DBConfig       `koanf:"db"`
	Tracking TrackingConfig `koanf:"tracking"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	Mode            string        `koanf:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type SiteConfig struct {
	BaseURL string `koanf:"base_url"`
}

type SessionConfig struct {
	TTL         time.Duration `koanf:"ttl"`
	Sweep       time.Duration `koanf:"sweep"`
	MaxSessions int           `koanf:"max_sessions"`
	Secure      bool          `koanf:"secure"`
}

type MenuConfig struct {
	// PointerEvents enables outside-click dismissal of the mobile panel.
	PointerEvents bool `koanf:"pointer_events"`
}

type DBConfig struct {
	Path      string        `koanf:"path"`
	Retention time.Duration `koanf:"retention"`
}

type TrackingConfig struct {
	Enabled bool   `koanf:"enabled"`
	Salt    string `koanf:"salt"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console or json
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			TTL:         30 * time.Minute,
			Sweep:       time.Minute,
			MaxSessions: 10000,
		},
		Menu:     MenuConfig{PointerEvents: true},
		DB:       DBConfig{Path: "portfolio.db", Retention: 365 * 24 * time.Hour},
		Tracking: TrackingConfig{Enabled: true},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads the optional YAML file at path, then overlays PORTFOLIO_*
// environment variables. PORT, when set, overrides the listen port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// PORTFOLIO_SESSION_MAX_SESSIONS -> session.max_sessions
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	return cfg, nil
}

var validModes = map[string]bool{"debug": true, "release": true, "test": true}

var validFormats = map[string]bool{"console": true, "json": true}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if !validModes[c.Server.Mode] {
		return fmt.Errorf("invalid server.mode %q: must be one of debug, release, test", c.Server.Mode)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.Sweep <= 0 {
		return fmt.Errorf("session.sweep must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("session.max_sessions must be positive")
	}
	if c.Tracking.Enabled && strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path is required when tracking is enabled")
	}
	if c.DB.Retention < 0 {
		return fmt.Errorf("db.retention must be non-negative")
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}
	return nil
}
