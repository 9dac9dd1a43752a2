package internal

import (
	"log/slog"

	"github.com/starford/markdownfeeds/internal/generator"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logger    *slog.Logger
	observers generator.Observers
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the JSON stdout logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithObserver adds an observer receiving the events of every feed run.
func WithObserver(o generator.Observer) Option {
	return func(a *application) {
		a.observers = append(a.observers, o)
	}
}
