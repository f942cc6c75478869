package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/diogo/adsagent/internal/api"
	"github.com/diogo/adsagent/internal/config"
	"github.com/diogo/adsagent/internal/logging"
	"github.com/diogo/adsagent/internal/models"
	"github.com/diogo/adsagent/internal/render"
)

// fakeTUI records the RunChat call instead of starting bubbletea
type fakeTUI struct {
	called bool
	client api.ClientInterface
	cfg    config.Config
	err    error
}

func (f *fakeTUI) RunChat(ctx context.Context, client api.ClientInterface, cfg config.Config, logger zerolog.Logger) error {
	f.called = true
	f.client = client
	f.cfg = cfg
	return f.err
}

// harness wires Dependencies to in-memory fakes
type harness struct {
	deps   *Dependencies
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	client *api.MockClient
	tui    *fakeTUI

	piped bool
	tty   bool

	mu         sync.Mutex
	backendURL string
	copied     []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvBackendURL, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(render.EnvStyle, render.ThemeASCII)

	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		client: &api.MockClient{},
		tui:    &fakeTUI{},
	}
	h.deps = &Dependencies{
		NewClient: func(baseURL string, opts ...api.ClientOption) (api.ClientInterface, error) {
			h.mu.Lock()
			h.backendURL = baseURL
			h.mu.Unlock()
			return h.client, nil
		},
		TUI:            h.tui,
		LoadConfig:     config.LoadConfig,
		LoadFileConfig: config.LoadFileConfig,
		SaveConfig:     config.SaveConfig,
		ConfigPath:     config.GetConfigPath,
		SetupLogger: func(string) (zerolog.Logger, io.Closer, error) {
			return logging.Nop(), nil, nil
		},
		CopyText: func(s string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.copied = append(h.copied, s)
			return nil
		},
		Stdin:      strings.NewReader(""),
		Stdout:     h.stdout,
		Stderr:     h.stderr,
		StdinPiped: func() bool { return h.piped },
		StdoutTTY:  func() bool { return h.tty },
	}
	return h
}

func (h *harness) run(args ...string) error {
	return h.runContext(context.Background(), args...)
}

func (h *harness) runContext(ctx context.Context, args ...string) error {
	cmd := NewRootCmd(h.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (h *harness) lastRequest(t *testing.T) models.ChatRequest {
	t.Helper()
	req, ok := h.client.LastRequest()
	require.True(t, ok, "expected a chat request")
	return req
}

func failingClient(string, ...api.ClientOption) (api.ClientInterface, error) {
	return nil, errors.New("invalid backend URL")
}
