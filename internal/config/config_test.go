package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Menu.PointerEvents {
		t.Errorf("expected outside-click dismissal enabled by default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr: got %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("ttl: got %v", cfg.Session.TTL)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.yaml")
	data := []byte(`
server:
  mode: debug
site:
  base_url: https://example.org
session:
  ttl: 5m
menu:
  pointer_events: false
log:
  format: console
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "")
	t.Setenv("PORTFOLIO_SESSION_MAX_SESSIONS", "12")
	t.Setenv("PORTFOLIO_DB_PATH", "/tmp/visits.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Mode != "debug" {
		t.Errorf("mode: got %q", cfg.Server.Mode)
	}
	if cfg.Site.BaseURL != "https://example.org" {
		t.Errorf("base_url: got %q", cfg.Site.BaseURL)
	}
	if cfg.Session.TTL != 5*time.Minute {
		t.Errorf("ttl: got %v", cfg.Session.TTL)
	}
	if cfg.Menu.PointerEvents {
		t.Errorf("pointer_events: expected false")
	}
	if cfg.Session.MaxSessions != 12 {
		t.Errorf("max_sessions: got %d", cfg.Session.MaxSessions)
	}
	if cfg.DB.Path != "/tmp/visits.db" {
		t.Errorf("db.path: got %q", cfg.DB.Path)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr should keep default, got %q", cfg.Server.Addr)
	}
}

func TestPortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr: got %q, want :9090", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty addr":    func(c *Config) { c.Server.Addr = "" },
		"bad mode":      func(c *Config) { c.Server.Mode = "prod" },
		"zero ttl":      func(c *Config) { c.Session.TTL = 0 },
		"zero sweep":    func(c *Config) { c.Session.Sweep = 0 },
		"no sessions":   func(c *Config) { c.Session.MaxSessions = 0 },
		"no db":         func(c *Config) { c.DB.Path = "" },
		"bad format":    func(c *Config) { c.Log.Format = "xml" },
		"neg retention": func(c *Config) { c.DB.Retention = -time.Hour },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	cfg := Default()
	cfg.Tracking.Enabled = false
	cfg.DB.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("db.path is optional without tracking: %v", err)
	}
}
