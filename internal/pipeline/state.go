package pipeline

import (
	"log/slog"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateLoading
	StatePrompting
	StateSummarizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateLoading:
		return "loading"
	case StatePrompting:
		return "prompting"
	case StateSummarizing:
		return "summarizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is notified about every state change of a run.
type Observer interface {
	OnTransition(from State, to State)
}

type ObserverFunc func(from State, to State)

func (f ObserverFunc) OnTransition(from State, to State) {
	f(from, to)
}

type logObserver struct {
	log *slog.Logger
}

func (o logObserver) OnTransition(from State, to State) {
	o.log.Debug("Pipeline state changed",
		"from", from,
		"to", to)
}
