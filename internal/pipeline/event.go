package pipeline

import (
	"context"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/bnema/coffeeviz-cli/internal/ports"
)

type EventKind int

const (
	// EventCompleted is emitted once per Execute, whatever the outcome.
	EventCompleted EventKind = iota + 1
	// EventAuthRejected is emitted when an Unauthorized result ended the
	// current session.
	EventAuthRejected
)

func (k EventKind) String() string {
	switch k {
	case EventCompleted:
		return "completed"
	case EventAuthRejected:
		return "auth_rejected"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind     EventKind
	CallID   string
	Method   string
	Path     string
	Result   domain.Result
	Duration time.Duration
}

// Observer receives pipeline events on the calling goroutine. Implementations
// must return quickly; anything slow belongs on a goroutine or timer.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// RedirectOnReject forwards EventAuthRejected to navigator.
func RedirectOnReject(navigator ports.Navigator) Observer {
	return ObserverFunc(func(e Event) {
		if e.Kind == EventAuthRejected {
			navigator.RedirectToLogin(context.Background())
		}
	})
}
