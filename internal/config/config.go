// Package config loads the material server configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brandworks/material-registry/pkg/storagesync"
)

// DatabaseConfig selects the backing database.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen     string             `yaml:"listen"`
	Database   DatabaseConfig     `yaml:"database"`
	Storage    storagesync.Config `yaml:"storage"`
	WebhookURL string             `yaml:"webhookUrl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen: ":8080",
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "material-registry.db",
		},
		Storage: storagesync.DefaultConfig(),
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
