package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/adsagent/internal/history"
	"github.com/diogo/adsagent/internal/session"
)

// slashCommand is a local command typed into the input; it is never sent
type slashCommand struct {
	name string
	arg  string
}

// parseSlashCommand recognises the local commands. Any other input,
// including unknown "/words", is an ordinary message.
func parseSlashCommand(input string) (slashCommand, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return slashCommand{}, false
	}

	name, arg, _ := strings.Cut(input, " ")
	switch name {
	case "/exit", "/quit":
		return slashCommand{name: "/quit"}, true
	case "/export", "/copy", "/help":
		return slashCommand{name: name, arg: strings.TrimSpace(arg)}, true
	default:
		return slashCommand{}, false
	}
}

const helpText = "/export [file.md|file.json]  save the transcript · /copy  copy the last reply · /quit  leave"

// runSlashCommand executes cmd against the current snapshot
func (m *Model) runSlashCommand(cmd slashCommand) tea.Cmd {
	switch cmd.name {
	case "/quit":
		return m.quit()

	case "/help":
		return m.addToast(session.LevelInfo, helpText)

	case "/export":
		path := cmd.arg
		if path == "" {
			path = history.DefaultFilename(m.now(), history.ExportFormatMarkdown)
		}
		opts := history.DefaultExportOptions()
		opts.Backend = m.opts.BackendURL
		opts.Now = m.now
		written, err := history.WriteTranscript(path, m.snap.History, opts)
		if err != nil {
			m.logger.Warn().Err(err).Str("path", path).Msg("transcript export failed")
			return m.addToast(session.LevelError, fmt.Sprintf("Export failed: %v", err))
		}
		m.logger.Info().Str("path", written).Int("messages", len(m.snap.History)).Msg("transcript exported")
		return m.addToast(session.LevelInfo, "Transcript saved to "+written)

	case "/copy":
		last, ok := m.snap.LastAssistant()
		if !ok {
			return m.addToast(session.LevelInfo, "No assistant reply to copy yet.")
		}
		if err := m.copyText(last.Content); err != nil {
			return m.addToast(session.LevelError, fmt.Sprintf("Copy failed: %v", err))
		}
		return m.addToast(session.LevelInfo, "Last reply copied to clipboard.")
	}
	return nil
}
