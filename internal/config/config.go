// Rallyfeed - Duo Matchmaking Feed and Compatibility Recommendations
// Copyright 2026 Davis Hong (davishong)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/davishong/rallyfeed

// Package config loads application configuration via Koanf v2 with layered
// sources. Priority, highest wins:
//
//  1. Environment variables (explicit key map, see envKeyMap)
//  2. Config file (config.yaml, path via CONFIG_PATH)
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	NATS     NATSConfig     `koanf:"nats"`
	Events   EventsConfig   `koanf:"events"`
	Stats    StatsConfig    `koanf:"stats"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path         string        `koanf:"path"` // empty = in-memory
	QueryTimeout time.Duration `koanf:"query_timeout"`
	MaxOpenConns int           `koanf:"max_open_conns"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// AuthConfig holds token verification settings. Token issuance is handled by
// the account service; this service only verifies.
type AuthConfig struct {
	// Mode is "jwt" or "none". "none" disables auth (development only).
	Mode      string `koanf:"mode"`
	JWTSecret string `koanf:"jwt_secret"`
}

// NATSConfig holds event bus settings.
type NATSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Embedded bool   `koanf:"embedded"`  // run an in-process nats-server (dev/test)
	StoreDir string `koanf:"store_dir"` // JetStream storage for the embedded server
}

// EventsConfig holds funnel event tracking settings.
type EventsConfig struct {
	// SpoolPath is the BadgerDB directory used to spool events while the
	// event bus is unavailable. Empty disables the spool.
	SpoolPath string `koanf:"spool_path"`
}

// StatsConfig holds the external champion-stats API client settings.
type StatsConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
	RatePerSec  float64       `koanf:"rate_per_sec"`
	RateBurst   int           `koanf:"rate_burst"`
	BreakerOpen time.Duration `koanf:"breaker_open"`
}

// defaultConfig returns the built-in defaults (lowest priority layer).
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8090,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:         "rallyfeed.db",
			QueryTimeout: 30 * time.Second,
			MaxOpenConns: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			Mode: "jwt",
		},
		NATS: NATSConfig{
			Enabled:  false,
			URL:      "nats://localhost:4222",
			Embedded: false,
			StoreDir: "nats-data",
		},
		Events: EventsConfig{
			SpoolPath: "",
		},
		Stats: StatsConfig{
			Enabled:     false,
			Timeout:     10 * time.Second,
			RatePerSec:  5,
			RateBurst:   10,
			BreakerOpen: 30 * time.Second,
		},
	}
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are dropped so unrelated environment noise cannot leak
// into configuration.
func envTransformFunc(key string) string {
	return envKeyMap[strings.ToLower(key)]
}

var envKeyMap = map[string]string{
	"server_host":       "server.host",
	"server_port":       "server.port",
	"cors_origins":      "server.cors_origins",
	"database_path":     "database.path",
	"db_query_timeout":  "database.query_timeout",
	"log_level":         "log.level",
	"log_format":        "log.format",
	"log_caller":        "log.caller",
	"auth_mode":         "auth.mode",
	"jwt_secret":        "auth.jwt_secret",
	"nats_enabled":      "nats.enabled",
	"nats_url":          "nats.url",
	"nats_embedded":     "nats.embedded",
	"nats_store_dir":    "nats.store_dir",
	"events_spool_path": "events.spool_path",
	"stats_enabled":     "stats.enabled",
	"stats_base_url":    "stats.base_url",
}

// Load builds the configuration from defaults, optional config file, and
// environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional YAML config file
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the config file path, or "" when none exists.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	for _, candidate := range []string{"config.yaml", "/etc/rallyfeed/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Validate checks cross-field configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Auth.Mode != "jwt" && c.Auth.Mode != "none" {
		return fmt.Errorf("invalid auth mode: %q (must be jwt or none)", c.Auth.Mode)
	}
	if c.Auth.Mode == "jwt" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters in jwt mode")
	}
	if c.Stats.Enabled && c.Stats.BaseURL == "" {
		return fmt.Errorf("stats.base_url is required when stats refresh is enabled")
	}
	return nil
}
