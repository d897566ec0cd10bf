// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Database.Path != "rallyfeed.db" {
		t.Errorf("Database.Path = %q, want rallyfeed.db", cfg.Database.Path)
	}
	if cfg.Database.QueryTimeout != 30*time.Second {
		t.Errorf("Database.QueryTimeout = %v, want 30s", cfg.Database.QueryTimeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want level=info format=json", cfg.Log)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled = true, want false by default")
	}
	if cfg.Stats.Enabled {
		t.Error("Stats.Enabled = true, want false by default")
	}
}

func TestLoadRequiresJWTSecretInJWTMode(t *testing.T) {
	// Default mode is jwt with no secret configured.
	_, err := Load()
	if err == nil {
		t.Fatal("Load succeeded without a JWT secret")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("error = %v, want mention of jwt_secret", err)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DATABASE_PATH", "/tmp/feed.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("NATS_URL", "nats://bus:4222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/feed.db" {
		t.Errorf("Database.Path = %q, want /tmp/feed.db", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if !cfg.NATS.Enabled || cfg.NATS.URL != "nats://bus:4222" {
		t.Errorf("NATS = %+v, want enabled with url nats://bus:4222", cfg.NATS)
	}
}

func TestLoadUnmappedEnvironmentIgnored(t *testing.T) {
	t.Setenv("AUTH_MODE", "none")
	t.Setenv("SERVER_HOST_TYPO", "10.0.0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9200
auth:
  mode: none
stats:
  enabled: true
  base_url: "http://stats.internal"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200", cfg.Server.Port)
	}
	if !cfg.Stats.Enabled || cfg.Stats.BaseURL != "http://stats.internal" {
		t.Errorf("Stats = %+v, want enabled with base_url", cfg.Stats)
	}
}

func TestLoadEnvironmentBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9200\nauth:\n  mode: none\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "9300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9300 {
		t.Errorf("Server.Port = %d, want env override 9300", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg := defaultConfig()
		cfg.Auth.Mode = "none"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad auth mode", func(c *Config) { c.Auth.Mode = "oauth" }, true},
		{"short jwt secret", func(c *Config) {
			c.Auth.Mode = "jwt"
			c.Auth.JWTSecret = "short"
		}, true},
		{"jwt with long secret", func(c *Config) {
			c.Auth.Mode = "jwt"
			c.Auth.JWTSecret = strings.Repeat("s", 32)
		}, false},
		{"stats enabled without base url", func(c *Config) { c.Stats.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
