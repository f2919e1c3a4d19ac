package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json5"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.AI.Model)
	}
	if cfg.Refresh.Schedule != "0 */6 * * *" {
		t.Errorf("schedule = %q", cfg.Refresh.Schedule)
	}
	if cfg.Web.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Web.Addr)
	}
	if cfg.Sessions.CacheSize != 512 {
		t.Errorf("cache size = %d", cfg.Sessions.CacheSize)
	}
	if cfg.Refresh.Divisors["hotline.ua"] != 41 {
		t.Errorf("divisors = %v", cfg.Refresh.Divisors)
	}
}

func TestLoadFileWithComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigbot.json5")
	content := `{
		// bot credentials live in the environment normally
		telegram: { token: "file-token" },
		db: { path: "/tmp/custom.db" },
		refresh: {
			enabled: true,
			minDelayMs: 1000,
		},
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "file-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.DB.Path != "/tmp/custom.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if !cfg.Refresh.Enabled || cfg.Refresh.MinDelayMs != 1000 {
		t.Errorf("refresh = %+v", cfg.Refresh)
	}
	// Unset fields still get defaults.
	if cfg.Refresh.MaxDelayMs < cfg.Refresh.MinDelayMs {
		t.Errorf("max delay %d < min %d", cfg.Refresh.MaxDelayMs, cfg.Refresh.MinDelayMs)
	}
	if cfg.AI.APIBase == "" {
		t.Error("api base not defaulted")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvBotToken, "env-token")
	t.Setenv(EnvAIAPIKey, "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json5"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.AI.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.AI.APIKey)
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rigbot.json5")
	if err := os.WriteFile(path, []byte("{ not valid"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}
