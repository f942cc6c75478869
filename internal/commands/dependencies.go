package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/adsagent/internal/api"
	"github.com/diogo/adsagent/internal/config"
	"github.com/diogo/adsagent/internal/logging"
	"github.com/diogo/adsagent/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, client api.ClientInterface, cfg config.Config, logger zerolog.Logger) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the assistant client for a backend URL.
	NewClient func(baseURL string, opts ...api.ClientOption) (api.ClientInterface, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// LoadConfig returns the effective configuration, env overrides applied
	LoadConfig func() (config.Config, error)
	// LoadFileConfig returns the configuration file as stored
	LoadFileConfig func() (config.Config, error)
	SaveConfig     func(config.Config) error
	ConfigPath     func() (string, error)
	SetupLogger    func(level string) (zerolog.Logger, io.Closer, error)
	CopyText       func(string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether a prompt is being piped in
	StdinPiped func() bool
	// StdoutTTY reports whether decorated output should be used
	StdoutTTY func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, client api.ClientInterface, cfg config.Config, logger zerolog.Logger) error {
	return tui.RunChat(ctx, client, cfg, logger)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: func(baseURL string, opts ...api.ClientOption) (api.ClientInterface, error) {
			return api.NewClient(baseURL, opts...)
		},
		TUI:            &DefaultTUI{},
		LoadConfig:     config.LoadConfig,
		LoadFileConfig: config.LoadFileConfig,
		SaveConfig:     config.SaveConfig,
		ConfigPath:     config.GetConfigPath,
		SetupLogger:    logging.Setup,
		CopyText:       clipboard.WriteAll,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		StdinPiped:     stdinPiped,
		StdoutTTY:      isStdoutTTY,
	}
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
