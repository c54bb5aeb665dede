// Package commands holds flag structs and helpers shared by the hbq
// binaries.
package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hbtools/hbq/internal/config"
	"github.com/hbtools/hbq/internal/model"
)

// CommonConfig contains configuration common to all commands.
type CommonConfig struct {
	// File is the path to the HomeBank database; it wins over the config
	// file when both are set.
	File string `help:"Path to the HomeBank .xhb file" env:"HBQ_FILE" type:"path"`
	// Config points at an explicit config file instead of the discovered
	// one.
	Config string `help:"Path to a config file" type:"path"`
	// LogLevel is the logging level to use.
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	// DisplayCurrency picks the currency (ISO code) whose precision is used
	// when formatting amounts.
	DisplayCurrency string `help:"ISO code of the currency used to format amounts" env:"HBQ_CURRENCY"`
}

// ErrNoDatabasePath is returned when neither --file nor a config file
// names the database to load.
var ErrNoDatabasePath = errors.New("no database path given: pass --file or set path in the config file")

// Logger builds the process logger from the configured level.
func (c *CommonConfig) Logger() *log.Logger {
	logger := log.New(os.Stderr)
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

// LoadModel resolves the database path and loads the model once. The whole
// file is decoded and the model built before any query runs.
func (c *CommonConfig) LoadModel(logger *log.Logger) (*model.Model, error) {
	path := c.File
	if path == "" {
		cfgPath := c.Config
		if cfgPath == "" {
			if discovered, ok := config.Discover(); ok {
				cfgPath = discovered
			}
		}
		if cfgPath != "" {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return nil, err
			}
			path = cfg.Path
			if c.DisplayCurrency == "" {
				c.DisplayCurrency = cfg.DisplayCurrency
			}
		}
	}
	if path == "" {
		return nil, ErrNoDatabasePath
	}
	return model.Load(path, logger)
}

// Frac returns the number of decimal places used to format amounts: the
// display currency's when one is configured and known, otherwise the
// database's default currency's.
func (c *CommonConfig) Frac(m *model.Model) int {
	if c.DisplayCurrency != "" {
		if cur, ok := m.CurrencyByISO(c.DisplayCurrency); ok {
			return cur.Frac
		}
	}
	return m.AccountCurrency(0).Frac
}

// ParseDate parses an optional YYYY-MM-DD flag value. An empty string
// means the bound is absent.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}
