// Package logging builds the application's zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds logging configuration.
type Config struct {
	Level      zerolog.Level
	Format     string
	TimeFormat string

	// Out defaults to os.Stderr.
	Out io.Writer
}

// DefaultConfig returns info-level console logging.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		TimeFormat: time.RFC3339,
	}
}

// ParseConfig builds a Config from textual level and format settings.
func ParseConfig(level, format string) (Config, error) {
	cfg := DefaultConfig()

	if level != "" {
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return cfg, fmt.Errorf("log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	switch format {
	case "":
	case FormatConsole, FormatJSON:
		cfg.Format = format
	default:
		return cfg, fmt.Errorf("log format %q: want %s or %s", format, FormatConsole, FormatJSON)
	}
	return cfg, nil
}

// New creates a logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var output io.Writer = out
	if cfg.Format == FormatConsole {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}
