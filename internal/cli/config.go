package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration, read from
// ~/.config/contriblens/config.toml (override with CONTRIBLENS_CONFIG).
// Everything is optional; the zero config runs unauthenticated with a file
// cache.
type Config struct {
	// Token is a personal access token. The --token flag and GITHUB_TOKEN
	// take precedence.
	Token string `toml:"token"`

	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file cache location.
	Dir string `toml:"dir"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{Backend: "file"},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the config file at path, returning defaults when the
// file does not exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// configPath resolves the config file location.
func configPath() string {
	if p := os.Getenv("CONTRIBLENS_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName, "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}
