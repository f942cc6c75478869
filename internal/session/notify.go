package session

import "time"

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a transient, non-blocking message for the user
type Notification struct {
	Level   Level
	Message string
	TurnID  string
	Err     error
	At      time.Time
}

// Notifier receives notifications. Notify must not block for long; it is
// called from the goroutine that resolved the request.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
