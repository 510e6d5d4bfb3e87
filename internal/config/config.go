// Package config loads the process-wide CLI configuration: cache tuning,
// lock retry tuning, and logging. This is distinct from the project-local
// config.yaml a Layout points at (the serializer/version marker written
// inside a project root) — this one lives under XDG_CONFIG_HOME and
// applies across every project the CLI touches.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Cache CacheConfig `yaml:"cache"`
	Lock  LockConfig  `yaml:"lock"`
	Log   LogConfig   `yaml:"log"`
}

// CacheConfig tunes internal/cache. TTL resolves spec.md §9's open question
// on cache lifetime ("5 minutes, tunable" per SPEC_FULL.md §4.5).
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// LockConfig tunes internal/lockguard's acquisition algorithm.
type LockConfig struct {
	StaleAfter    time.Duration `yaml:"stale_after"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Lock: LockConfig{
			StaleAfter:    30 * time.Second,
			RetryAttempts: 10,
			RetryInterval: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// Load loads configuration using the real environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function. This allows tests to provide isolated environment values.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if level := getenv("TICKETSTORE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func getConfigPath() string {
	return getConfigPathWithEnv(os.Getenv)
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ticketstore", "config.yaml")
	}

	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ticketstore", "config.yaml")
}
