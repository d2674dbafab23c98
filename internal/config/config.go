// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/openmetrica/gaquery/internal/constants"
)

// Config is the tool's runtime configuration: logging, the metadata
// catalog location, and the compiler limits.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Metadata string         `yaml:"metadata"`
	Compiler CompilerConfig `yaml:"compiler"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// CompilerConfig carries the compiler's fixed limits.
type CompilerConfig struct {
	EarliestDate string `yaml:"earliest_date"`
	MaxResults   int    `yaml:"max_results"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Compiler: CompilerConfig{
			EarliestDate: constants.DefaultEarliestDate,
			MaxResults:   constants.DefaultMaxResults,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.gaquery/config.yaml. The GAQUERY_CONFIG environment variable
// overrides the base directory.
func DefaultPath() string {
	if baseDir := os.Getenv("GAQUERY_CONFIG"); baseDir != "" {
		return filepath.Join(baseDir, constants.ConfigFile)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constants.DefaultDir, constants.ConfigFile)
	}
	return filepath.Join(homeDir, constants.DefaultDir, constants.ConfigFile)
}

// Load reads the config file at path, layered over defaults. A missing
// file is not an error: defaults plus environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers GAQUERY_* environment variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv("GAQUERY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GAQUERY_METADATA"); v != "" {
		c.Metadata = v
	}
	if v := os.Getenv("GAQUERY_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Compiler.MaxResults = n
		}
	}
}

func (c *Config) validate() error {
	if c.Compiler.MaxResults <= 0 {
		return fmt.Errorf("config: max_results must be positive, got %d", c.Compiler.MaxResults)
	}
	if c.Compiler.EarliestDate == "" {
		return fmt.Errorf("config: earliest_date must not be empty")
	}
	return nil
}
