// Package config provides configuration management for starlay using
// Viper for flexible configuration loading from files and environment
// variables.
//
// The configuration system supports YAML files and environment variable
// overrides with a STARLAY_ prefix. It manages the trusted exports
// script paths, the semantics flag values handed to the flag store, and
// logging options.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Exports ExportsConfig          `yaml:"exports"`
	Flags   map[string]interface{} `yaml:"flags"`
	Log     LogConfig              `yaml:"log"`
}

// ExportsConfig names the trusted exports scripts. Only files listed
// here receive the privileged _builtins binding; the list is the trust
// boundary.
type ExportsConfig struct {
	Paths []string `yaml:"paths"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle exports paths set via viper (workaround for viper slice
	// handling)
	if viper.IsSet("exports.paths") && len(config.Exports.Paths) == 0 {
		paths := viper.GetStringSlice("exports.paths")
		if len(paths) > 0 {
			config.Exports.Paths = paths
		}
	}

	if viper.IsSet("flags") && config.Flags == nil {
		config.Flags = viper.GetStringMap("flags")
	}
	if config.Flags == nil {
		config.Flags = make(map[string]interface{})
	}

	// Apply default values for LogConfig if not set
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateExportsConfig(&config.Exports); err != nil {
		return fmt.Errorf("exports config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if err := validateFlags(config.Flags); err != nil {
		return fmt.Errorf("flags config: %w", err)
	}

	return nil
}

// validateExportsConfig validates the trusted exports script paths
func validateExportsConfig(config *ExportsConfig) error {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid exports path '%s': %w", path, err)
		}
	}

	return nil
}

// validateLogConfig validates logging configuration values
func validateLogConfig(config *LogConfig) error {
	switch config.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level: %s", config.Level)
	}

	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", config.Format)
	}

	return nil
}

// validateFlags validates semantics flag names
func validateFlags(flags map[string]interface{}) error {
	for name := range flags {
		if name == "" {
			return fmt.Errorf("empty flag name")
		}
		if strings.ContainsAny(name, " \t\n\r") {
			return fmt.Errorf("flag name contains whitespace: %q", name)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
