package generator

import (
	"context"
	"log/slog"
)

// EventKind names a pipeline progress event.
type EventKind string

const (
	EventDiscovered   EventKind = "discovered"
	EventLoaded       EventKind = "loaded"
	EventTransformed  EventKind = "transformed"
	EventValidated    EventKind = "validated"
	EventPaginated    EventKind = "paginated"
	EventPageExported EventKind = "page_exported"
	EventCompleted    EventKind = "completed"
	EventFailed       EventKind = "failed"
)

// Event reports the progress of a run. Count holds the number of files,
// documents, items or pages the stage handled.
type Event struct {
	Kind      EventKind
	Generator string
	Path      string
	Page      int
	Count     int
	Err       error
}

// Observer receives run events. Implementations must be safe for concurrent
// use: page exports report from several goroutines.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans an event out to every observer in order.
type Observers []Observer

func (o Observers) Observe(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(e)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// LogObserver writes events to a slog logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (l *LogObserver) Observe(e Event) {
	level := slog.LevelDebug
	switch e.Kind {
	case EventCompleted, EventPageExported:
		level = slog.LevelInfo
	case EventFailed:
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("generator", e.Generator),
		slog.String("event", string(e.Kind)),
	}
	if e.Path != "" {
		attrs = append(attrs, slog.String("path", e.Path))
	}
	if e.Page > 0 {
		attrs = append(attrs, slog.Int("page", e.Page))
	}
	if e.Count > 0 {
		attrs = append(attrs, slog.Int("count", e.Count))
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "feed generator", attrs...)
}
