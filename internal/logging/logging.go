// Package logging configures the zerolog logger used across adsagent.
//
// The chat TUI owns the terminal, so logs go to a file in the config
// directory rather than stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/diogo/adsagent/internal/config"
)

// ParseLevel converts a config level name into a zerolog level.
// An empty name means info.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel, errors.Wrapf(err, "invalid log level %q", name)
	}
	return level, nil
}

// New builds a logger writing JSON lines to w
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Setup opens the log file under the config directory and returns a logger
// writing to it. The returned closer must be closed on exit.
func Setup(levelName string) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(levelName)
	if err != nil {
		return Nop(), nopCloser{}, err
	}
	if level == zerolog.Disabled {
		return Nop(), nopCloser{}, nil
	}

	path, err := config.GetLogPath()
	if err != nil {
		return Nop(), nopCloser{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Nop(), nopCloser{}, errors.Wrap(err, "failed to create log directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return Nop(), nopCloser{}, errors.Wrap(err, "failed to open log file")
	}

	logger := New(f, level).With().Int("pid", os.Getpid()).Logger()
	return logger, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
