package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if filepath.Base(cfg.DBPath) != DBFileName {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/plans.db
addr: ":9000"
log_level: debug
log_format: json
persist_timeout: 5s
watch_interval: 250ms
history_depth: 10
document_key: plans
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/plans.db" || cfg.Addr != ":9000" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.PersistTimeout != 5*time.Second || cfg.WatchInterval != 250*time.Millisecond {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.HistoryDepth != 10 || cfg.DocumentKey != "plans" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "addr: \":9000\"\n")
	t.Setenv("ROADMAP_ADDR", ":9100")
	t.Setenv("ROADMAP_HISTORY_DEPTH", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.HistoryDepth != 3 {
		t.Fatalf("expected env history depth, got %d", cfg.HistoryDepth)
	}
	if cfg.DocumentKey != DefaultDocumentKey {
		t.Fatalf("expected default key, got %q", cfg.DocumentKey)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing explicit file to fail")
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.WatchInterval != DefaultWatchInterval {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty db path", func(c *Config) { c.DBPath = " " }, "db_path"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"zero timeout", func(c *Config) { c.PersistTimeout = 0 }, "persist_timeout"},
		{"zero interval", func(c *Config) { c.WatchInterval = 0 }, "watch_interval"},
		{"negative depth", func(c *Config) { c.HistoryDepth = -1 }, "history_depth"},
		{"empty key", func(c *Config) { c.DocumentKey = "" }, "document_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %s error, got %v", tt.want, err)
			}
		})
	}
}
