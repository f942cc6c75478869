package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/adsagent/internal/models"
	"github.com/diogo/adsagent/internal/render"
	"github.com/diogo/adsagent/internal/session"
	"github.com/diogo/adsagent/internal/tui"
)

// Google palette for the loading animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#4285F4"), // Blue
	lipgloss.Color("#34A853"), // Green
	lipgloss.Color("#FBBC05"), // Yellow
	lipgloss.Color("#EA4335"), // Red
	lipgloss.Color("#8AB4F8"), // Light blue
	lipgloss.Color("#81C995"), // Light green
}

var (
	colorText     = lipgloss.Color("#e8eaed")
	colorTextMute = lipgloss.Color("#5f6368")
	colorSuccess  = lipgloss.Color("#34A853")
	colorPrimary  = lipgloss.Color("#4285F4")
	colorError    = lipgloss.Color("#EA4335")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginBottom(0)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// queryOptions are the flags of the one-shot query
type queryOptions struct {
	output string
	raw    bool
}

// runQuery sends a single turn through a fresh session and prints the reply.
// Raw output is used when asked for or when stdout is not a terminal.
func runQuery(ctx context.Context, a *app, prompt string, opts queryOptions) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	stdout, stderr := a.deps.Stdout, a.deps.Stderr
	rawOutput := opts.raw || !a.deps.StdoutTTY()

	client, err := a.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if a.cfg.Verbose && !rawOutput {
		fmt.Fprintf(stderr, "[verbose] Backend: %s\n", client.BaseURL())
	}

	// A one-shot turn always aborts its request on interrupt
	sess := session.New(client,
		session.WithLogger(a.logger),
		session.WithAbortOnCancel(true),
	)
	sess.SetDraft(prompt)

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(stderr, "Strategizing")
		spin.start()
	}

	startTime := time.Now()
	turn, err := sess.Submit(ctx)
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}

	select {
	case <-turn.Done():
	case <-ctx.Done():
		sess.Cancel()
	}
	requestDuration := time.Since(startTime)

	// An interrupt that raced the reply still counts as an interrupt
	if ctx.Err() != nil && turn.Outcome() != session.OutcomeReplied {
		if spin != nil {
			spin.stopWithError()
		}
		fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorTextMute).Render("Cancelled."))
		return reported(ctx.Err())
	}

	if turn.Outcome() != session.OutcomeReplied {
		if spin != nil {
			spin.stopWithError()
		}
		fmt.Fprintln(stderr, formatErrorMessage(turn.Err(), a.cfg.Verbose))
		return reported(turn.Err())
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	if a.cfg.Verbose && !rawOutput {
		fmt.Fprintf(stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	text := turn.Reply()

	if rawOutput {
		if opts.output != "" {
			return writeOutput(opts.output, text)
		}
		fmt.Fprint(stdout, text)
		return nil
	}

	fmt.Fprintln(stderr)

	if a.cfg.CopyToClipboard {
		if err := a.deps.CopyText(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(stderr, warnMsg)
		} else {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := writeOutput(opts.output, text); err != nil {
			return err
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Reply saved to %s", opts.output),
		)
		fmt.Fprintln(stderr, successMsg)
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(stdout, assistantLabelStyle.Render("✦ "+models.RoleAssistant.Label()))

	rendered := render.NewReplyRenderer(render.OptionsFromConfig(a.cfg)).Reply(text, contentWidth)
	fmt.Fprintln(stdout, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))

	return nil
}

func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// formatErrorMessage renders the single user-facing failure notice, with
// the diagnostic detail of the error when verbose is set
func formatErrorMessage(err error, verbose bool) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	msg := errStyle.Render("✗ " + models.UnreachableNotice)
	if verbose {
		msg += "\n" + tui.FormatError(err)
	}
	return msg
}
