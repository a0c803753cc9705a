package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the config from path. If the file doesn't exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects settings the tool cannot act on.
func (c *Config) Validate() error {
	switch c.Tunnel.Backend {
	case "ip", "netlink":
	default:
		return fmt.Errorf("config: unknown tunnel backend %q", c.Tunnel.Backend)
	}
	if c.Tunnel.Interface == "" {
		return fmt.Errorf("config: tunnel interface is empty")
	}
	if c.Resolver.URL == "" {
		return fmt.Errorf("config: resolver url is empty")
	}
	if c.Resolver.Attempts == 0 {
		c.Resolver.Attempts = 1
	}
	return nil
}
