package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/adsagent/internal/api"
	apierrors "github.com/diogo/adsagent/internal/errors"
	"github.com/diogo/adsagent/internal/models"
	"github.com/diogo/adsagent/internal/render"
	"github.com/diogo/adsagent/internal/session"
)

// gate holds every Chat call until release is closed
type gate struct {
	release chan struct{}
	reply   string
}

func newGate(reply string) *gate {
	return &gate{release: make(chan struct{}), reply: reply}
}

func (g *gate) client() *api.MockClient {
	return &api.MockClient{
		ChatFunc: func(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
			<-g.release
			return &models.ChatResponse{Response: g.reply}, nil
		},
	}
}

type fixture struct {
	model  Model
	sess   *session.Session
	client *api.MockClient
	notes  ChannelNotifier
}

func newFixture(t *testing.T, client *api.MockClient, width int) *fixture {
	t.Helper()
	notes := NewChannelNotifier()
	sess := session.New(client, session.WithNotifier(notes))
	t.Cleanup(func() {
		sess.Cancel()
	})

	opts := Options{
		BackendURL:     "http://localhost:8000",
		NotifyDuration: time.Second,
		Render:         render.Options{Style: render.ThemeASCII},
	}
	m := NewChatModel(context.Background(), sess, notes, opts)
	m.copyText = func(string) error { return nil }

	f := &fixture{model: m, sess: sess, client: client, notes: notes}
	f.send(tea.WindowSizeMsg{Width: width, Height: 40})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	f.model = next.(Model)
	return cmd
}

func (f *fixture) typeText(s string) {
	f.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (f *fixture) enter() tea.Cmd {
	return f.send(tea.KeyMsg{Type: tea.KeyEnter})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestView_BeforeWindowSize(t *testing.T) {
	m := NewChatModel(context.Background(), session.New(&api.MockClient{}), nil, Options{})
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("view should show the initializing placeholder before sizing")
	}
}

func TestView_EmptyConversation(t *testing.T) {
	f := newFixture(t, &api.MockClient{}, 120)
	view := f.model.View()

	for _, want := range []string{appTitle, emptyConversationText, "Senior Strategist", "Account Performance Audit", "Weekly Performance Reports"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestView_NarrowHidesProfile(t *testing.T) {
	f := newFixture(t, &api.MockClient{}, 80)
	if strings.Contains(f.model.View(), "Senior Strategist") {
		t.Error("capability panel should be hidden on narrow terminals")
	}
}

func TestTyping_UpdatesDraft(t *testing.T) {
	f := newFixture(t, &api.MockClient{}, 120)
	f.typeText("Audit my account")

	if got := f.sess.Draft(); got != "Audit my account" {
		t.Errorf("session draft = %q", got)
	}
}

func TestNewChatModel_ShowsExistingDraft(t *testing.T) {
	sess := session.New(&api.MockClient{})
	sess.SetDraft("half typed")

	m := NewChatModel(context.Background(), sess, nil, Options{})
	if m.textarea.Value() != "half typed" {
		t.Errorf("textarea = %q, want the session draft", m.textarea.Value())
	}
}

func TestEnter_SubmitsAndShowsReply(t *testing.T) {
	g := newGate("ROAS is revenue divided by ad spend")
	f := newFixture(t, g.client(), 120)

	f.typeText("What is ROAS?")
	cmd := f.enter()
	if cmd == nil {
		t.Fatal("enter should return commands for the pending turn")
	}

	if f.model.textarea.Value() != "" {
		t.Error("input should clear immediately")
	}
	snap := f.model.Snapshot()
	if !snap.Pending || len(snap.History) != 1 {
		t.Fatalf("expected pending with one user message, got %+v", snap)
	}
	if !strings.Contains(f.model.View(), loadingText) {
		t.Error("view should show the pending indicator")
	}

	close(g.release)
	f.sess.Wait()
	f.send(turnSettledMsg{})

	snap = f.model.Snapshot()
	if snap.Pending {
		t.Error("should not be pending after the reply")
	}
	if len(snap.History) != 2 || snap.History[1].Role != models.RoleAssistant {
		t.Fatalf("expected user and assistant messages, got %+v", snap.History)
	}
	if !strings.Contains(f.model.View(), "revenue") {
		t.Error("view should show the reply")
	}
}

func TestEnter_BlankIsNoop(t *testing.T) {
	client := &api.MockClient{}
	f := newFixture(t, client, 120)

	f.typeText("   ")
	if cmd := f.enter(); cmd != nil {
		t.Error("blank submit should not return a command")
	}

	if len(f.model.Snapshot().History) != 0 || client.RequestCount() != 0 {
		t.Error("blank submit should not change history or send a request")
	}
}

func TestEnter_WhileAwaitingKeepsDraft(t *testing.T) {
	g := newGate("ok")
	f := newFixture(t, g.client(), 120)
	defer close(g.release)

	f.typeText("first")
	f.enter()
	f.typeText("second")
	f.enter()

	if f.model.textarea.Value() != "second" {
		t.Errorf("rejected draft should stay in the input, got %q", f.model.textarea.Value())
	}
	if n := len(f.model.Snapshot().History); n != 1 {
		t.Errorf("expected 1 message, got %d", n)
	}
	if !strings.Contains(f.model.View(), "Still strategizing") {
		t.Error("view should explain why the message was not sent")
	}
}

func TestEsc_CancelsThenQuits(t *testing.T) {
	g := newGate("late reply")
	f := newFixture(t, g.client(), 120)

	f.typeText("slow question")
	f.enter()

	if cmd := f.send(tea.KeyMsg{Type: tea.KeyEsc}); isQuit(cmd) {
		t.Fatal("esc while pending should cancel, not quit")
	}
	if f.model.Snapshot().Pending {
		t.Error("cancel should clear pending immediately")
	}
	if !strings.Contains(f.model.View(), "Request cancelled.") {
		t.Error("view should confirm the cancel")
	}

	close(g.release)
	f.sess.Wait()
	f.send(turnSettledMsg{})
	if n := len(f.model.Snapshot().History); n != 1 {
		t.Errorf("late reply should be discarded, history has %d messages", n)
	}

	if cmd := f.send(tea.KeyMsg{Type: tea.KeyEsc}); !isQuit(cmd) {
		t.Error("esc while idle should quit")
	}
}

func TestEsc_AfterReplySettledIsNoop(t *testing.T) {
	g := newGate("Pause the broad match ad group")
	f := newFixture(t, g.client(), 120)

	f.typeText("What should I pause?")
	f.enter()

	// The reply lands before its settled message reaches the model
	close(g.release)
	f.sess.Wait()

	if cmd := f.send(tea.KeyMsg{Type: tea.KeyEsc}); isQuit(cmd) {
		t.Fatal("esc should not quit while the model still shows a pending turn")
	}
	if strings.Contains(f.model.View(), "Request cancelled.") {
		t.Error("a settled turn should not be reported as cancelled")
	}
	snap := f.model.Snapshot()
	if snap.Pending {
		t.Error("esc should pick up the settled turn")
	}
	if len(snap.History) != 2 {
		t.Errorf("reply should be kept, history has %d messages", len(snap.History))
	}

	if cmd := f.send(tea.KeyMsg{Type: tea.KeyEsc}); !isQuit(cmd) {
		t.Error("esc while idle should quit")
	}
}

func TestEnter_BareQuitIsSentAsMessage(t *testing.T) {
	for _, word := range []string{"quit", "exit"} {
		t.Run(word, func(t *testing.T) {
			client := &api.MockClient{ChatVal: &models.ChatResponse{Response: "Noted."}}
			f := newFixture(t, client, 120)

			f.typeText(word)
			cmd := f.enter()
			if isQuit(cmd) {
				t.Fatalf("%q should be sent, not quit the program", word)
			}
			f.sess.Wait()
			f.send(turnSettledMsg{})

			if client.RequestCount() != 1 {
				t.Errorf("expected 1 request, got %d", client.RequestCount())
			}
			snap := f.model.Snapshot()
			if len(snap.History) != 2 || snap.History[0].Content != word {
				t.Errorf("expected %q in history, got %+v", word, snap.History)
			}
			if f.model.View() == "" {
				t.Error("model should keep running")
			}
		})
	}
}

func TestView_PendingShowsLoadingAnimation(t *testing.T) {
	g := newGate("ok")
	f := newFixture(t, g.client(), 120)
	defer close(g.release)

	f.typeText("Audit my account")
	f.enter()
	before := f.model.renderLoadingAnimation()

	f.send(animationTickMsg(time.Now()))

	view := f.model.View()
	if !strings.Contains(view, loadingText) || !strings.Contains(view, "Esc to cancel") {
		t.Error("pending view should show the loading indicator")
	}
	if f.model.renderLoadingAnimation() == before {
		t.Error("animation tick should advance the indicator")
	}
}

func TestFailure_ShowsNotificationToast(t *testing.T) {
	client := &api.MockClient{ChatErr: apierrors.NewStatusError(502, models.EndpointChat, "bad gateway")}
	f := newFixture(t, client, 120)

	f.typeText("hello")
	f.enter()
	f.sess.Wait()

	var n session.Notification
	select {
	case n = <-f.notes:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
	f.send(notificationMsg(n))
	f.send(turnSettledMsg{})

	view := f.model.View()
	if !strings.Contains(view, models.UnreachableNotice) {
		t.Errorf("view should show the failure notice")
	}
	if n := len(f.model.Snapshot().History); n != 1 {
		t.Errorf("failed turn should leave only the user message, got %d", n)
	}

	f.send(toastExpiredMsg{id: f.model.nextToastID})
	if strings.Contains(f.model.View(), models.UnreachableNotice) {
		t.Error("toast should disappear once expired")
	}
}

func TestSlashExport(t *testing.T) {
	client := &api.MockClient{ChatVal: &models.ChatResponse{Response: "Pause broad match."}}
	f := newFixture(t, client, 120)

	f.typeText("Any quick wins?")
	f.enter()
	f.sess.Wait()
	f.send(turnSettledMsg{})

	path := filepath.Join(t.TempDir(), "chat.json")
	f.typeText("/export " + path)
	f.enter()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	if !strings.Contains(string(data), "Pause broad match.") {
		t.Errorf("transcript missing reply:\n%s", data)
	}
	if client.RequestCount() != 1 {
		t.Errorf("slash command must not be sent, got %d requests", client.RequestCount())
	}
	if f.sess.Draft() != "" || f.model.textarea.Value() != "" {
		t.Error("slash command should clear the input")
	}
}

func TestSlashExport_EmptyConversation(t *testing.T) {
	f := newFixture(t, &api.MockClient{}, 120)

	f.typeText("/export " + filepath.Join(t.TempDir(), "chat.md"))
	f.enter()

	if !strings.Contains(f.model.View(), "Export failed") {
		t.Error("exporting an empty conversation should report a failure")
	}
}

func TestSlashCopy(t *testing.T) {
	client := &api.MockClient{ChatVal: &models.ChatResponse{Response: "Headline 1: Save 20% Today"}}
	f := newFixture(t, client, 120)

	var copied string
	f.model.copyText = func(s string) error {
		copied = s
		return nil
	}

	f.typeText("/copy")
	f.enter()
	if copied != "" {
		t.Error("nothing should be copied before a reply exists")
	}

	f.typeText("Write a headline")
	f.enter()
	f.sess.Wait()
	f.send(turnSettledMsg{})

	f.typeText("/copy")
	f.enter()
	if copied != "Headline 1: Save 20% Today" {
		t.Errorf("copied %q", copied)
	}
}

func TestSlashCopy_Error(t *testing.T) {
	client := &api.MockClient{ChatVal: &models.ChatResponse{Response: "ok"}}
	f := newFixture(t, client, 120)
	f.model.copyText = func(string) error { return errors.New("no clipboard") }

	f.typeText("hi")
	f.enter()
	f.sess.Wait()
	f.send(turnSettledMsg{})

	f.typeText("/copy")
	f.enter()
	if !strings.Contains(f.model.View(), "Copy failed") {
		t.Error("clipboard failure should be reported")
	}
}

func TestCopyToClipboardOnReply(t *testing.T) {
	client := &api.MockClient{ChatVal: &models.ChatResponse{Response: "auto copied"}}
	f := newFixture(t, client, 120)
	f.model.opts.CopyToClipboard = true

	var copied string
	f.model.copyText = func(s string) error {
		copied = s
		return nil
	}

	f.typeText("hi")
	for _, msg := range settledMsgs(f.enter()) {
		f.send(msg)
	}

	if copied != "auto copied" {
		t.Errorf("reply should be copied automatically, got %q", copied)
	}
}

// settledMsgs runs the commands batched by a submit and keeps the
// turnSettledMsg results
func settledMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		return nil
	}
	var out []tea.Msg
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(turnSettledMsg); ok {
			out = append(out, msg)
		}
	}
	return out
}

func TestCtrlC_Quits(t *testing.T) {
	f := newFixture(t, &api.MockClient{}, 120)
	if cmd := f.send(tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
	if f.model.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		arg   string
		ok    bool
	}{
		{"/exit", "/quit", "", true},
		{"/quit", "/quit", "", true},
		{"quit", "", "", false},
		{"exit", "", "", false},
		{" exit ", "", "", false},
		{"/export", "/export", "", true},
		{"/export  out.json ", "/export", "out.json", true},
		{"/copy", "/copy", "", true},
		{"/help", "/help", "", true},
		{"/budget advice", "", "", false},
		{"What is ROAS?", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, ok := parseSlashCommand(tt.input)
			if ok != tt.ok || cmd.name != tt.name || cmd.arg != tt.arg {
				t.Errorf("parseSlashCommand(%q) = %+v, %v", tt.input, cmd, ok)
			}
		})
	}
}

func TestChannelNotifier_NeverBlocks(t *testing.T) {
	n := make(ChannelNotifier)
	done := make(chan struct{})
	go func() {
		n.Notify(session.Notification{Message: "dropped"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full channel")
	}
}

func TestFormatError(t *testing.T) {
	err := apierrors.NewStatusError(500, models.EndpointChat, "internal error")
	out := FormatError(err)

	for _, want := range []string{"HTTP Status: 500", "Endpoint: /api/chat", "internal error", "Kind: status"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatError should contain %q, got:\n%s", want, out)
		}
	}

	if FormatError(nil) != "" {
		t.Error("FormatError(nil) should be empty")
	}
}
