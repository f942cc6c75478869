// Package config handles configuration for adsagent.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/diogo/adsagent/internal/models"
)

// Environment variables that take precedence over the config file
const (
	EnvHome       = "ADSAGENT_HOME"
	EnvBackendURL = "ADSAGENT_BACKEND_URL"
	EnvLogLevel   = "ADSAGENT_LOG_LEVEL"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "ads", "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// BackendURL is the base URL of the assistant backend, without /api/chat.
	BackendURL string `json:"backend_url"`
	// TimeoutSeconds bounds each HTTP request. Zero means no timeout.
	TimeoutSeconds int `json:"timeout_seconds"`
	// SendHistory sends prior turns in chat_history. The backend has always
	// received an empty array, so this stays off unless asked for.
	SendHistory bool `json:"send_history"`
	// AbortOnCancel also cancels the in-flight request when a turn is cancelled.
	// When false, cancel only changes local state and the late reply is discarded.
	AbortOnCancel bool `json:"abort_on_cancel"`
	// NotifySeconds is how long a notification stays visible in the TUI.
	NotifySeconds   int            `json:"notify_seconds"`
	LogLevel        string         `json:"log_level"`
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "ads",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BackendURL:      models.DefaultBackendURL,
		TimeoutSeconds:  0,
		SendHistory:     false,
		AbortOnCancel:   false,
		NotifySeconds:   4,
		LogLevel:        "info",
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "ads",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	return filepath.Join(home, ".adsagent"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path to the log file
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "adsagent.log"), nil
}

// LoadConfig loads the configuration from disk and applies env overrides
func LoadConfig() (Config, error) {
	cfg, err := LoadFileConfig()
	return applyEnv(cfg), err
}

// LoadFileConfig loads the configuration file without env overrides, for
// callers that save it back. A missing file yields the defaults.
func LoadFileConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "failed to read config file")
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), errors.Wrap(err, "failed to parse config file")
	}

	return cfg, nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// setters maps the keys accepted by `adsagent config set` to their parsers
var setters = map[string]func(*Config, string) error{
	"backend_url": func(c *Config, v string) error {
		v = strings.TrimRight(strings.TrimSpace(v), "/")
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return errors.Errorf("must start with http:// or https://")
		}
		c.BackendURL = v
		return nil
	},
	"timeout_seconds": func(c *Config, v string) error {
		n, err := parseNonNegative(v)
		if err != nil {
			return err
		}
		c.TimeoutSeconds = n
		return nil
	},
	"notify_seconds": func(c *Config, v string) error {
		n, err := parseNonNegative(v)
		if err != nil {
			return err
		}
		if n == 0 {
			return errors.Errorf("must be at least 1")
		}
		c.NotifySeconds = n
		return nil
	},
	"send_history":      boolSetter(func(c *Config) *bool { return &c.SendHistory }),
	"abort_on_cancel":   boolSetter(func(c *Config) *bool { return &c.AbortOnCancel }),
	"verbose":           boolSetter(func(c *Config) *bool { return &c.Verbose }),
	"copy_to_clipboard": boolSetter(func(c *Config) *bool { return &c.CopyToClipboard }),
	"log_level": func(c *Config, v string) error {
		switch v {
		case "trace", "debug", "info", "warn", "error", "disabled":
			c.LogLevel = v
			return nil
		}
		return errors.Errorf("unknown level %q", v)
	},
	"tui_theme": func(c *Config, v string) error {
		c.TUITheme = v
		return nil
	},
	"markdown.style": func(c *Config, v string) error {
		c.Markdown.Style = v
		return nil
	},
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Errorf("expected true or false, got %q", v)
		}
		*field(c) = b
		return nil
	}
}

func parseNonNegative(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Errorf("expected a non-negative integer, got %q", v)
	}
	return n, nil
}

// Set updates a single key on cfg
func (c *Config) Set(key, value string) error {
	setter, ok := setters[key]
	if !ok {
		return errors.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return errors.Wrap(setter(c, value), key)
}

// Keys returns the keys accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
