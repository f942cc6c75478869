package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/adsagent/internal/api"
	"github.com/diogo/adsagent/internal/config"
	"github.com/diogo/adsagent/internal/models"
	"github.com/diogo/adsagent/internal/render"
	"github.com/diogo/adsagent/internal/session"
)

// Animation tick message
type animationTickMsg time.Time

// turnSettledMsg is sent once a submitted turn has resolved
type turnSettledMsg struct {
	turn *session.Turn
}

// Options configures the chat view
type Options struct {
	BackendURL      string
	NotifyDuration  time.Duration
	CopyToClipboard bool
	Render          render.Options
	Logger          zerolog.Logger
}

// OptionsFromConfig builds view options from the user configuration
func OptionsFromConfig(cfg config.Config, backendURL string) Options {
	notify := time.Duration(cfg.NotifySeconds) * time.Second
	if notify <= 0 {
		notify = 4 * time.Second
	}
	return Options{
		BackendURL:      backendURL,
		NotifyDuration:  notify,
		CopyToClipboard: cfg.CopyToClipboard,
		Render:          render.OptionsFromConfig(cfg),
		Logger:          zerolog.Nop(),
	}
}

// Model represents the TUI state. It never owns conversation state: every
// frame is drawn from the latest session snapshot, and the input box is the
// session draft.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	notes  <-chan session.Notification
	opts   Options
	logger zerolog.Logger

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// Last snapshot of the session
	snap    session.Snapshot
	replies *render.ReplyRenderer

	ready          bool
	showPanel      bool
	animationFrame int
	toasts         []toast
	nextToastID    int
	quitting       bool

	// Dimensions
	width  int
	height int

	now      func() time.Time
	copyText func(string) error
}

// NewChatModel creates a chat view over sess. notes should be the channel
// the session notifier writes to.
func NewChatModel(ctx context.Context, sess *session.Session, notes <-chan session.Notification, opts Options) Model {
	if opts.NotifyDuration <= 0 {
		opts.NotifyDuration = 4 * time.Second
	}
	if opts.Render == (render.Options{}) {
		opts.Render = render.DefaultOptions()
	}

	ta := textarea.New()
	ta.Placeholder = inputPlaceholder
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j", "alt+enter")
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	snap := sess.Snapshot()
	ta.SetValue(snap.Draft)

	return Model{
		ctx:      ctx,
		sess:     sess,
		notes:    notes,
		opts:     opts,
		logger:   opts.Logger,
		textarea: ta,
		snap:     snap,
		replies:  render.NewReplyRenderer(opts.Render),
		now:      time.Now,
		copyText: clipboard.WriteAll,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForNotification(m.notes),
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// waitForTurn returns a command that reports when turn settles
func waitForTurn(turn *session.Turn) tea.Cmd {
	return func() tea.Msg {
		<-turn.Done()
		return turnSettledMsg{turn: turn}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			cmd := m.quit()
			return m, cmd

		case "esc":
			if m.sess.Cancel() {
				m.refresh()
				cmd := m.addToast(session.LevelInfo, "Request cancelled.")
				return m, cmd
			}
			// The turn settled before its message arrived
			if m.snap.Pending {
				m.refresh()
				return m, nil
			}
			cmd := m.quit()
			return m, cmd

		case "enter":
			return m.submit()
		}

		// The input stays editable while a turn is pending
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.sess.SetDraft(m.textarea.Value())

	case turnSettledMsg:
		m.refresh()
		m.viewport.GotoBottom()
		if msg.turn != nil && msg.turn.Outcome() == session.OutcomeReplied && m.opts.CopyToClipboard {
			if err := m.copyText(msg.turn.Reply()); err != nil {
				m.logger.Debug().Err(err).Msg("clipboard copy failed")
			}
		}

	case notificationMsg:
		m.refresh()
		cmds = append(cmds,
			m.addToast(msg.Level, msg.Message),
			waitForNotification(m.notes),
		)

	case toastExpiredMsg:
		m.removeToast(msg.id)

	case animationTickMsg:
		if m.snap.Pending {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: local commands first, then a session turn
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := m.textarea.Value()

	if slash, ok := parseSlashCommand(input); ok {
		m.textarea.Reset()
		m.sess.SetDraft("")
		cmd := m.runSlashCommand(slash)
		return m, cmd
	}

	m.sess.SetDraft(input)
	turn, err := m.sess.Submit(m.ctx)
	switch {
	case errors.Is(err, session.ErrEmptyDraft):
		return m, nil
	case errors.Is(err, session.ErrTurnInFlight):
		cmd := m.addToast(session.LevelInfo, "Still strategizing on your last message. Press Esc to cancel it.")
		return m, cmd
	case err != nil:
		cmd := m.addToast(session.LevelError, err.Error())
		return m, cmd
	}

	m.textarea.Reset()
	m.animationFrame = 0
	m.refresh()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		waitForTurn(turn),
		animationTick(),
	)
}

// quit abandons any pending turn and leaves the program
func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.sess.Cancel()
	return tea.Quit
}

// refresh re-reads the session and redraws the conversation
func (m *Model) refresh() {
	m.snap = m.sess.Snapshot()
	m.updateViewport()
}

// layout sizes the components for the current window
func (m *Model) layout() {
	headerHeight := 5 // title, tagline, border, margin
	inputHeight := 6  // label, textarea, border, margin
	statusHeight := 2 // status or toast line
	frame := messagesAreaStyle.GetVerticalFrameSize()

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - frame
	if vpHeight < 5 {
		vpHeight = 5
	}

	chatWidth := m.chatWidth()
	vpWidth := chatWidth - messagesAreaStyle.GetHorizontalFrameSize()
	if vpWidth < 20 {
		vpWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.contentWidth() - inputPanelStyle.GetHorizontalFrameSize())
}

func (m Model) contentWidth() int {
	return m.width - 4
}

// chatWidth is the width of the conversation panel, leaving room for the
// capability panel on wide terminals
func (m *Model) chatWidth() int {
	m.showPanel = m.width >= minWidthForPanel
	if m.showPanel {
		return m.contentWidth() - panelWidth - 1
	}
	return m.contentWidth()
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.contentWidth()

	// Header
	headerTop := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ "+appTitle),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.opts.BackendURL),
	)
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, headerTop, hintStyle.Render(appTagline)),
	)
	sections = append(sections, header)

	// Conversation, with the capability panel beside it when there is room
	var messagesContent string
	if len(m.snap.History) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(m.viewport.Width + messagesAreaStyle.GetHorizontalPadding()).
		Height(m.viewport.Height).
		Render(messagesContent)
	if m.showPanel {
		messagesPanel = lipgloss.JoinHorizontal(lipgloss.Top,
			messagesPanel,
			" ",
			renderProfile(DefaultProfile, panelWidth),
		)
	}
	sections = append(sections, messagesPanel)

	// Input
	label := inputLabelStyle.Render("You")
	if m.snap.Pending {
		label = m.renderLoadingAnimation()
	}
	inputPanel := inputPanelStyle.Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View()),
	)
	sections = append(sections, inputPanel)

	// Toasts replace the status bar while visible
	if toasts := m.renderToasts(contentWidth); toasts != "" {
		sections = append(sections, statusBarStyle.Width(contentWidth).Render(toasts))
	} else {
		sections = append(sections, m.renderStatusBar(contentWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the empty conversation
func (m Model) renderWelcome() string {
	width := m.viewport.Width
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("＋"),
		"",
		welcomeStyle.Width(width).Render(emptyConversationText),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders the animated pending indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 12
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + loadingText + " ")
	hint := hintStyle.Render("(Esc to cancel)")

	return fmt.Sprintf("%s %s %s %s", spin, bar.String(), text, hint)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	escDesc := "Quit"
	if m.snap.Pending {
		escDesc = "Cancel"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+J", "Newline"},
		{"Esc", escDesc},
		{"↑↓", "Scroll"},
		{"/help", "Commands"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content from the snapshot history
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.snap.History {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("● " + msg.Role.Label())
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ " + msg.Role.Label())
			rendered := m.replies.Reply(msg.Content, bubbleWidth-4)
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// Snapshot returns the session state the view last rendered
func (m Model) Snapshot() session.Snapshot {
	return m.snap
}

// RunChat starts the chat TUI against client
func RunChat(ctx context.Context, client api.ClientInterface, cfg config.Config, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		UpdateTheme()
	}

	notes := NewChannelNotifier()
	sess := session.New(client,
		session.WithNotifier(notes),
		session.WithLogger(logger),
		session.WithSendHistory(cfg.SendHistory),
		session.WithAbortOnCancel(cfg.AbortOnCancel),
	)

	opts := OptionsFromConfig(cfg, client.BaseURL())
	opts.Logger = logger

	m := NewChatModel(ctx, sess, notes, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
