package editor

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notice for the admin UI's toast panel.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is one outcome report. Every user-initiated mutation produces
// exactly one notice at the point of invocation; there are no silent
// failures.
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	PageKey   string    `json:"page_key"`
	SectionID int64     `json:"section_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier receives outcome notices. Implementations must not block: the
// state machine calls Notify while servicing UI events.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to the process log. Used as the default sink
// when no UI notifier is wired.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	log.Printf("[Editor] %s %s: %s", n.Level, n.Operation, n.Message)
}

// Fanout delivers each notice to every wrapped notifier in order.
func Fanout(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(n Notice) {
		for _, notifier := range notifiers {
			if notifier != nil {
				notifier.Notify(n)
			}
		}
	})
}

func newNotice(level Level, operation, message, pageKey string, sectionID int64) Notice {
	return Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Operation: operation,
		Message:   message,
		PageKey:   pageKey,
		SectionID: sectionID,
		At:        time.Now(),
	}
}
