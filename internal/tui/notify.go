package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/adsagent/internal/session"
)

// notificationMsg carries a session notification into the update loop
type notificationMsg session.Notification

// toastExpiredMsg removes a toast once its time is up
type toastExpiredMsg struct {
	id int
}

// toast is a notification currently on screen
type toast struct {
	id      int
	level   session.Level
	text    string
	expires time.Time
}

// ChannelNotifier forwards session notifications to the TUI.
// Notify never blocks; the buffer only has to hold notifications that
// arrive while the program is busy, and at most one turn is in flight.
type ChannelNotifier chan session.Notification

// NewChannelNotifier creates a notifier with a small buffer
func NewChannelNotifier() ChannelNotifier {
	return make(ChannelNotifier, 16)
}

// Notify implements session.Notifier
func (c ChannelNotifier) Notify(n session.Notification) {
	select {
	case c <- n:
	default:
	}
}

// waitForNotification returns a command that delivers the next notification
func waitForNotification(ch <-chan session.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

// expireToast schedules removal of toast id after d
func expireToast(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// addToast shows text for the configured duration
func (m *Model) addToast(level session.Level, text string) tea.Cmd {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{
		id:      id,
		level:   level,
		text:    text,
		expires: m.now().Add(m.opts.NotifyDuration),
	})
	return expireToast(id, m.opts.NotifyDuration)
}

func (m *Model) removeToast(id int) {
	kept := make([]toast, 0, len(m.toasts))
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// renderToasts renders the visible toasts on one line, newest last
func (m Model) renderToasts(width int) string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := toastInfoStyle
		icon := "ℹ "
		if t.level == session.LevelError {
			style = toastErrorStyle
			icon = "✗ "
		}
		lines = append(lines, style.Render(icon+t.text))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(lines, "  │  "))
}
