package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "stock-assistant/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "STOCKBOT_MODEL", "STOCKBOT_ADDR", "OPENAI_BASE_URL", "STOCKBOT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadWithoutCredentials_CreatesTemplate(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadWithoutCredentials(dir)
	if err != nil {
		t.Fatalf("LoadWithoutCredentials: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("template not written: %v", err)
	}
	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", cfg.Model.Name)
	}
	if cfg.Chart.Path != "stock_price.png" {
		t.Errorf("chart path = %q", cfg.Chart.Path)
	}
	if cfg.Store.Path != filepath.Join(dir, "journal.db") {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.ConfigFile() != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile())
	}
}

func TestLoadWithoutCredentials_ReadsFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
[model]
name = "gpt-4o"

[server]
addr = "0.0.0.0:9000"
session_ttl = "30m"

[chart]
path = "out/chart.png"
width = 800
height = 400

[store]
enabled = false
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STOCKBOT_MODEL", "gpt-4.1-mini")

	cfg, err := LoadWithoutCredentials(dir)
	if err != nil {
		t.Fatalf("LoadWithoutCredentials: %v", err)
	}
	if cfg.Model.Name != "gpt-4.1-mini" {
		t.Errorf("env override not applied: %q", cfg.Model.Name)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.SessionTTL != 30*time.Minute || cfg.Server.MaxSessions != 1000 {
		t.Errorf("server sessions = %v / %d", cfg.Server.SessionTTL, cfg.Server.MaxSessions)
	}
	if cfg.Chart.Width != 800 || cfg.Chart.Height != 400 || cfg.Chart.Path != "out/chart.png" {
		t.Errorf("chart = %+v", cfg.Chart)
	}
	if cfg.Store.Enabled {
		t.Error("store should be disabled")
	}
}

func TestLoad_MissingAPIKeyFails(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := "[credentials]\napi_key_file = \"" + filepath.ToSlash(filepath.Join(dir, "missing")) + "\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if !errors.Is(err, apperrors.ErrMissingAPIKey) {
		t.Fatalf("Load error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoadAPIKey(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "API_KEY")
	if err := os.WriteFile(keyFile, []byte("  sk-from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	key, err := LoadAPIKey(keyFile)
	if err != nil || key != "sk-from-file" {
		t.Fatalf("LoadAPIKey = %q, %v", key, err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	key, err = LoadAPIKey(keyFile)
	if err != nil || key != "sk-from-env" {
		t.Fatalf("env should win: %q, %v", key, err)
	}

	t.Setenv("OPENAI_API_KEY", "")
	empty := filepath.Join(dir, "EMPTY")
	if err := os.WriteFile(empty, []byte("\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAPIKey(empty); !errors.Is(err, apperrors.ErrMissingAPIKey) {
		t.Errorf("empty key file error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Model:  ModelConfig{Name: "gpt-4o-mini"},
			Server: ServerConfig{Addr: "127.0.0.1:8501"},
			Chart:  ChartConfig{Path: "stock_price.png", Width: 10, Height: 10},
			Store:  StoreConfig{Enabled: true, Path: "j.db"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no model", func(c *Config) { c.Model.Name = " " }, false},
		{"no chart path", func(c *Config) { c.Chart.Path = "" }, false},
		{"zero width", func(c *Config) { c.Chart.Width = 0 }, false},
		{"bad addr", func(c *Config) { c.Server.Addr = "nohostport" }, false},
		{"store without path", func(c *Config) { c.Store.Path = "" }, false},
		{"disabled store without path", func(c *Config) { c.Store.Enabled = false; c.Store.Path = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, apperrors.ErrConfigInvalid) {
				t.Errorf("error = %v, want ErrConfigInvalid", err)
			}
		})
	}
}
