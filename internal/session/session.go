// Package session implements the conversation session controller: the
// turn-taking state machine between the user and the assistant backend.
//
// A Session moves between Idle and AwaitingResponse. Submit takes the draft,
// appends it to the history as a user message and issues exactly one request;
// the reply (or failure) is applied when the request resolves. Cancel returns
// to Idle at once, and whatever the cancelled request later resolves to is
// discarded.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/adsagent/internal/api"
	apierrors "github.com/diogo/adsagent/internal/errors"
	"github.com/diogo/adsagent/internal/models"
)

var (
	// ErrEmptyDraft is returned by Submit when the draft is blank. Nothing changes.
	ErrEmptyDraft = errors.New("draft is empty")
	// ErrTurnInFlight is returned by Submit while a turn awaits its response.
	// The draft is kept and nothing is sent.
	ErrTurnInFlight = errors.New("a turn is already awaiting a response")
)

// State is the controller state
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	if s == StateAwaitingResponse {
		return "awaiting_response"
	}
	return "idle"
}

// Sender delivers one user turn to the assistant
type Sender interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// Snapshot is a copy of the session state for rendering
type Snapshot struct {
	Draft      string
	History    []models.Message
	Pending    bool
	Generation uint64
}

// State returns the state the snapshot was taken in
func (s Snapshot) State() State {
	if s.Pending {
		return StateAwaitingResponse
	}
	return StateIdle
}

// LastAssistant returns the most recent assistant message
func (s Snapshot) LastAssistant() (models.Message, bool) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == models.RoleAssistant {
			return s.History[i], true
		}
	}
	return models.Message{}, false
}

// Session is the conversation session controller. It is safe for concurrent use.
type Session struct {
	sender        Sender
	notifier      Notifier
	logger        zerolog.Logger
	sendHistory   bool
	abortOnCancel bool

	mu         sync.Mutex
	draft      string
	history    []models.Message
	pending    bool
	generation uint64
	current    *Turn

	wg sync.WaitGroup
}

// Option configures a Session
type Option func(*Session)

// WithNotifier sets where failure notifications go
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the logger for turn lifecycle events
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSendHistory sends prior turns in chat_history instead of an empty array
func WithSendHistory(enabled bool) Option {
	return func(s *Session) {
		s.sendHistory = enabled
	}
}

// WithAbortOnCancel makes Cancel also cancel the in-flight request
func WithAbortOnCancel(enabled bool) Option {
	return func(s *Session) {
		s.abortOnCancel = enabled
	}
}

// New creates an idle session with an empty history
func New(sender Sender, opts ...Option) *Session {
	s := &Session{
		sender:   sender,
		notifier: nopNotifier{},
		logger:   zerolog.Nop(),
		history:  []models.Message{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDraft replaces the text being composed
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the text being composed
func (s *Session) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Pending reports whether a turn is awaiting its response
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// State returns the current controller state
func (s *Session) State() State {
	if s.Pending() {
		return StateAwaitingResponse
	}
	return StateIdle
}

// History returns a copy of the conversation so far, oldest first
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyHistory(s.history)
}

// Snapshot returns a consistent copy of draft, history and pending
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Draft:      s.draft,
		History:    copyHistory(s.history),
		Pending:    s.pending,
		Generation: s.generation,
	}
}

func copyHistory(h []models.Message) []models.Message {
	out := make([]models.Message, len(h))
	copy(out, h)
	return out
}

// Submit sends the current draft as a new turn.
//
// A blank draft returns ErrEmptyDraft and a submit while awaiting a response
// returns ErrTurnInFlight; neither changes any state. Otherwise the draft is
// cleared, the user message is appended, the session becomes pending and one
// request is issued in the background. Submit does not wait for the reply.
func (s *Session) Submit(ctx context.Context) (*Turn, error) {
	s.mu.Lock()

	text := s.draft
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return nil, ErrEmptyDraft
	}
	if s.pending {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}

	var prior []models.Message
	if s.sendHistory {
		prior = copyHistory(s.history)
	}

	s.draft = ""
	s.history = append(s.history, models.NewMessage(models.RoleUser, text))
	s.pending = true
	s.generation++

	reqCtx, cancel := context.WithCancel(ctx)
	turn := &Turn{
		ID:         uuid.NewString(),
		Generation: s.generation,
		Text:       text,
		done:       make(chan struct{}),
		cancel:     cancel,
	}
	s.current = turn
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info().
		Str("turn_id", turn.ID).
		Uint64("generation", turn.Generation).
		Int("chars", len(text)).
		Int("history_sent", len(prior)).
		Msg("turn submitted")

	go s.run(reqCtx, turn, models.NewChatRequest(text, prior))

	return turn, nil
}

func (s *Session) run(ctx context.Context, turn *Turn, req models.ChatRequest) {
	defer s.wg.Done()
	defer turn.cancel()

	start := time.Now()
	resp, err := s.sender.Chat(api.WithRequestID(ctx, turn.ID), req)
	if err == nil && resp == nil {
		err = apierrors.NewParseError(models.EndpointChat, "empty response", "")
	}

	s.settle(turn, resp, err, time.Since(start))
}

// settle applies the result of turn's request, unless the turn has gone stale
func (s *Session) settle(turn *Turn, resp *models.ChatResponse, err error, elapsed time.Duration) {
	s.mu.Lock()
	notify := false
	switch {
	case turn.Generation != s.generation:
		turn.outcome = OutcomeCancelled
	case err != nil:
		s.pending = false
		s.current = nil
		turn.outcome = OutcomeFailed
		turn.err = err
		notify = true
	default:
		s.history = append(s.history, models.NewMessage(models.RoleAssistant, resp.Text()))
		s.pending = false
		s.current = nil
		turn.outcome = OutcomeReplied
		turn.reply = resp.Text()
	}
	s.mu.Unlock()

	event := s.logger.Info()
	if turn.outcome == OutcomeFailed {
		event = s.logger.Warn().Err(err).Str("kind", apierrors.GetKind(err).String())
	}
	event.
		Str("turn_id", turn.ID).
		Uint64("generation", turn.Generation).
		Str("outcome", turn.outcome.String()).
		Dur("elapsed", elapsed).
		Msg("turn settled")

	if notify {
		s.notifier.Notify(Notification{
			Level:   LevelError,
			Message: models.UnreachableNotice,
			TurnID:  turn.ID,
			Err:     err,
			At:      time.Now(),
		})
	}

	close(turn.done)
}

// Cancel abandons the turn awaiting a response. The session is idle again
// immediately, no reply is appended, and the request's eventual result is
// ignored. It reports whether there was a turn to cancel.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return false
	}

	turn := s.current
	s.pending = false
	s.current = nil
	s.generation++
	abort := s.abortOnCancel
	s.mu.Unlock()

	if turn != nil {
		s.logger.Info().
			Str("turn_id", turn.ID).
			Uint64("generation", turn.Generation).
			Bool("abort", abort).
			Msg("turn cancelled")
		if abort {
			turn.cancel()
		}
	}
	return true
}

// Wait blocks until every request issued so far has resolved
func (s *Session) Wait() {
	s.wg.Wait()
}
