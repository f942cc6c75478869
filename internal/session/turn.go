package session

import "context"

// Outcome is how a turn ended
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeReplied
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReplied:
		return "replied"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Turn is the handle of one submitted user message.
// Done is closed once the outbound request has resolved and the session has
// applied (or, for a cancelled turn, discarded) its result.
type Turn struct {
	ID         string
	Generation uint64
	Text       string

	done   chan struct{}
	cancel context.CancelFunc

	// written by the session before done is closed
	outcome Outcome
	reply   string
	err     error
}

// Done returns a channel closed when the turn has settled
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn settles and returns its outcome
func (t *Turn) Wait() Outcome {
	<-t.done
	return t.outcome
}

// Outcome returns the outcome, or OutcomePending if the turn has not settled
func (t *Turn) Outcome() Outcome {
	select {
	case <-t.done:
		return t.outcome
	default:
		return OutcomePending
	}
}

// Reply returns the assistant text of a replied turn
func (t *Turn) Reply() string {
	if t.Outcome() != OutcomeReplied {
		return ""
	}
	return t.reply
}

// Err returns the failure of a failed turn
func (t *Turn) Err() error {
	if t.Outcome() != OutcomeFailed {
		return nil
	}
	return t.err
}
