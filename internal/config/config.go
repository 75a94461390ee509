package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the config file location.
const EnvPath = "OPFYX_CONFIG"

// Config holds optional defaults loaded from ~/.config/opfyx/config.yaml.
type Config struct {
	DefaultProfile string `yaml:"default_profile"`
	DefaultRegion  string `yaml:"default_region"`
	LogLevel       string `yaml:"log_level"`
	// AWSCLI is the aws executable used to start sessions.
	AWSCLI string `yaml:"aws_cli"`
}

// Path returns the config file location, honoring OPFYX_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "opfyx", "config.yaml"), nil
}

// Load reads the config file. Returns zero-value Config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	return or(profile, c.DefaultProfile), or(region, c.DefaultRegion)
}

// Level returns the log level flag, falling back to the configured one.
func (c *Config) Level(flag string) string {
	return or(flag, c.LogLevel)
}

func or(flag, def string) string {
	if flag != "" {
		return flag
	}
	return def
}
