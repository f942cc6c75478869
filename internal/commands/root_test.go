package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := NewRootCmd(newHarness(t).deps)
	if cmd.Use != "adsagent [prompt]" {
		t.Errorf("Expected use 'adsagent [prompt]', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
	if cmd.Args == nil {
		t.Error("Args validation should be configured")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd(newHarness(t).deps)

	for _, name := range []string{"chat", "health", "config"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestRootCommand_Flags(t *testing.T) {
	cmd := NewRootCmd(newHarness(t).deps)

	for _, name := range []string{"backend", "log-level", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "persistent flag %s", name)
	}
	for _, name := range []string{"output", "file", "raw", "version"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "o", cmd.Flags().Lookup("output").Shorthand)
	assert.Equal(t, "f", cmd.Flags().Lookup("file").Shorthand)
	assert.Equal(t, "v", cmd.Flags().Lookup("version").Shorthand)
}

func TestRootCommand_Version(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "long flag", args: []string{"--version"}},
		{name: "short flag", args: []string{"-v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.run(tt.args...))
			assert.Contains(t, h.stdout.String(), "adsagent "+Version)
			assert.Empty(t, h.client.Requests)
		})
	}
}

func TestRootCommand_NoInputShowsHelp(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run())

	assert.Contains(t, h.stdout.String(), "Usage:")
	assert.Equal(t, 0, h.client.RequestCount())
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	h := newHarness(t)

	err := h.run("one", "two")
	assert.Error(t, err)
	assert.Equal(t, 0, h.client.RequestCount())
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantOut bool
	}{
		{name: "plain error is printed", err: errors.New("boom"), wantOut: true},
		{name: "reported error is silent", err: reported(errors.New("boom")), wantOut: false},
		{name: "wrapped reported error is silent", err: fmt.Errorf("ctx: %w", reported(errors.New("boom"))), wantOut: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			if tt.wantOut {
				assert.Contains(t, buf.String(), "Error: boom")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestReportedError_Unwraps(t *testing.T) {
	cause := errors.New("cause")
	err := reported(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cause", err.Error())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(reported(errors.New("boom"))))
	assert.Equal(t, 130, exitCode(reported(context.Canceled)))
}
