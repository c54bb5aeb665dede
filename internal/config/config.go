// Package config reads the optional hbq configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Everything in it can also be given
// on the command line; flags win over the file.
type Config struct {
	// Path is the HomeBank .xhb database file to load.
	Path string `yaml:"path"`
	// LogLevel overrides the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`
	// DisplayCurrency is the ISO code of the currency whose precision is
	// used when formatting amounts; default is the database's default
	// currency.
	DisplayCurrency string `yaml:"display_currency,omitempty"`
}

// Load reads a config file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Discover returns the first config file that exists, checking
// $HBQ_CONFIG, then $XDG_CONFIG_HOME/hbq/config.yaml, then
// ~/.config/hbq/config.yaml. The second return is false when none exists;
// a missing config file is not an error.
func Discover() (string, bool) {
	if p := os.Getenv("HBQ_CONFIG"); p != "" {
		return p, fileExists(p)
	}

	var bases []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		bases = append(bases, xdg)
	}
	if home, err := os.UserHomeDir(); err == nil {
		bases = append(bases, filepath.Join(home, ".config"))
	}

	for _, base := range bases {
		p := filepath.Join(base, "hbq", "config.yaml")
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
