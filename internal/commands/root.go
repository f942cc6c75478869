// Package commands provides the adsagent command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/adsagent/internal/api"
	"github.com/diogo/adsagent/internal/config"
	"github.com/diogo/adsagent/internal/logging"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	backend  string
	logLevel string
	verbose  bool
}

// app is the per-invocation state built from config and flags
type app struct {
	deps   *Dependencies
	cfg    config.Config
	logger zerolog.Logger
	closer io.Closer
}

// newApp loads the configuration, applies flag overrides and opens the log.
// A broken config file or log file only produces a warning.
func newApp(deps *Dependencies, g *globalOptions) *app {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v, using defaults\n", err)
	}

	if g.backend != "" {
		cfg.BackendURL = g.backend
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.verbose {
		cfg.Verbose = true
	}

	logger, closer, err := deps.SetupLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: logging disabled: %v\n", err)
		logger = logging.Nop()
	}

	logger.Debug().
		Str("backend", cfg.BackendURL).
		Str("version", Version).
		Msg("adsagent starting")

	return &app{deps: deps, cfg: cfg, logger: logger, closer: closer}
}

func (a *app) newClient() (api.ClientInterface, error) {
	client, err := a.deps.NewClient(a.cfg.BackendURL,
		api.WithTimeout(time.Duration(a.cfg.TimeoutSeconds)*time.Second),
		api.WithUserAgent("adsagent/"+Version),
		api.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (a *app) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// withApp wraps a command body with app setup and teardown
func withApp(deps *Dependencies, g *globalOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := newApp(deps, g)
		defer a.Close()
		return run(cmd, a, args)
	}
}

// NewRootCmd builds the adsagent command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	g := &globalOptions{}
	q := &queryOptions{}
	var fileFlag string
	var versionFlag bool

	cmd := &cobra.Command{
		Use:   "adsagent [prompt]",
		Short: "Terminal client for the Google Ads Assistant",
		Long: `adsagent talks to the Google Ads Assistant backend. Ask about ROAS and
CPC, audit campaigns, or generate new ad copy from your terminal.

Examples:
  adsagent chat                               Start interactive chat
  adsagent "Why did my CPC go up this week?"  Send a single question
  adsagent -f brief.md                        Read prompt from file
  cat brief.md | adsagent                     Read prompt from stdin
  adsagent "Write 3 headlines" -o ads.md      Save reply to file
  adsagent health                             Check the backend
  adsagent config set backend_url http://ads.internal:8000`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionFlag {
				fmt.Fprintf(deps.Stdout, "adsagent %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, fileFlag, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}

			a := newApp(deps, g)
			defer a.Close()
			return runQuery(cmd.Context(), a, prompt, *q)
		},
	}

	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.SetIn(deps.Stdin)

	cmd.PersistentFlags().StringVar(&g.backend, "backend", "", "Backend base URL (overrides backend_url)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	cmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Show diagnostic detail on failures")
	cmd.Flags().StringVarP(&q.output, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&q.raw, "raw", false, "Print only the reply text")
	cmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatCmd(deps, g))
	cmd.AddCommand(newHealthCmd(deps, g))
	cmd.AddCommand(newConfigCmd(deps))

	return cmd
}

// readPrompt picks the prompt from -f, piped stdin, or the argument, in that
// order. ok is false when none was given.
func readPrompt(deps *Dependencies, file string, args []string) (string, bool, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if deps.StdinPiped() {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

// reportedError marks an error whose message was already shown to the user
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return reportedError{err: err}
}

// printError writes err to w unless it was already reported
func printError(w io.Writer, err error) {
	var r reportedError
	if errors.As(err, &r) {
		return
	}
	errStyle := lipgloss.NewStyle().Foreground(colorError)
	fmt.Fprintln(w, errStyle.Render("Error: "+err.Error()))
}

// exitCode maps a command error to the process status. An interrupt exits
// like a shell-killed process rather than a failure.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

// Execute runs the root command. Ctrl+C cancels the running command's
// context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := NewDependencies()
	if err := NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		printError(deps.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}
