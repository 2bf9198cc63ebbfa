// Package config loads daemon configuration from a file, picking the
// decoder by extension.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by defaults in main.
type Config struct {
	Addr              string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir         string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DefaultModel      string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	Source            string   `json:"source" yaml:"source" toml:"source"`
	MaxEngines        int      `json:"max_engines" yaml:"max_engines" toml:"max_engines"`
	MaxWaitMS         int      `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	ShutdownTimeoutMS int      `json:"shutdown_timeout_ms" yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms"`
	StreamDelayMS     int      `json:"stream_delay_ms" yaml:"stream_delay_ms" toml:"stream_delay_ms"`
	MaxBodyBytes      int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	LogLevel          string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSEnabled       bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
