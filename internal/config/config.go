// Package config provides configuration for the Blockbase server.
//
// Config file locations (priority order):
//  1. $BLOCKBASE_CONFIG
//  2. ./blockbase.yaml
//  3. ~/.config/blockbase/config.yaml
//  4. /etc/blockbase/config.yaml
//
// A missing file is not an error; defaults apply, and the -addr and -db
// flags in cmd/server override the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// CORSOrigins is the allow-list for cross-origin viewers; "*"
	// permits any origin.
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		Database: DatabaseConfig{Path: "./blockbase.db"},
		Log:      LogConfig{Level: "info"},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Database.Path == "" {
		c.Database.Path = "./blockbase.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
