package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the ciphers binary
type Config struct {
	Menu    MenuConfig    `yaml:"menu"`
	Socket  SocketConfig  `yaml:"socket"`
	Logging LoggingConfig `yaml:"logging"`
}

// MenuConfig configures the interactive menu
type MenuConfig struct {
	Color       string `yaml:"color"` // auto, always, never
	ShowTrace   bool   `yaml:"show_trace"`
	HistoryFile string `yaml:"history_file"`
	LettersOnly bool   `yaml:"letters_only"` // drop non-letters from messages instead of rejecting them
}

// SocketConfig configures the unix socket server and client
type SocketConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string   `yaml:"level"`  // debug, info, warn, error
	Format      string   `yaml:"format"` // json, console
	OutputPaths []string `yaml:"output_paths"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Menu: MenuConfig{
			Color: "auto",
		},
		Socket: SocketConfig{
			Path: "/tmp/ciphers.sock",
		},
		Logging: LoggingConfig{
			Level:       "warn",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/ciphers/config.yaml or the
// platform equivalent. It returns "" when no config dir is known.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ciphers", "config.yaml")
}

// LoadConfig loads configuration from a YAML file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Menu.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid menu.color %q: want auto, always or never", c.Menu.Color)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format %q: want json or console", c.Logging.Format)
	}
	if c.Socket.Path == "" {
		return fmt.Errorf("socket.path must not be empty")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CIPHERS_SOCKET"); path != "" {
		c.Socket.Path = path
	}
	if level := os.Getenv("CIPHERS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if mode := os.Getenv("CIPHERS_COLOR"); mode != "" {
		c.Menu.Color = mode
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		c.Menu.Color = "never"
	}
}
