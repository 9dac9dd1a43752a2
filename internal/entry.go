// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/markdownfeeds/internal/generator"
	"github.com/starford/markdownfeeds/internal/render"
	"github.com/starford/markdownfeeds/internal/server"
	"github.com/starford/markdownfeeds/internal/sse"
	"github.com/starford/markdownfeeds/internal/watch"
)

// Build generates every configured feed once.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	batch, _, err := app.batch(nil)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := batch.Run(ctx); err != nil {
		app.logger.Error("Build failed", slog.String("error", err.Error()))
		return err
	}
	app.logger.Info("Build finished",
		slog.Int("feeds", batch.Len()),
		slog.Duration("took", time.Since(start)))
	return nil
}

// Watch builds every feed, then rebuilds all of them whenever a source
// directory changes, until ctx is cancelled or a signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	batch, gens, err := app.batch(nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rebuild := serialize(batch.Run)
	if err := rebuild(ctx); err != nil {
		app.logger.Warn("initial build failed", slog.String("error", err.Error()))
	}
	return watch.Watch(ctx, sourceDirs(gens), app.config.App.Watch.Debounce, app.logger, rebuild)
}

// Serve builds every feed, serves the target directories over HTTP with a
// build event stream and rebuilds on source changes.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	// SSE broker and build status observe every run.
	broker := sse.NewBroker(sse.DefaultReloadInterval)
	defer broker.Close()
	status := server.NewStatus()

	batch, gens, err := app.batch(generator.Observers{broker, status})
	if err != nil {
		return err
	}
	rebuild := serialize(batch.Run)

	// Run initial build.
	if err := rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	mounts := make([]server.Mount, 0, len(gens))
	for _, g := range gens {
		mounts = append(mounts, server.Mount{Name: g.Name(), Dir: g.Settings().TargetDirectory})
	}
	r := server.NewRouter(server.Options{
		Mounts:  mounts,
		Events:  broker,
		Status:  status,
		Rebuild: rebuild,
	})

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher.
	g.Go(func() error {
		return watch.Watch(gCtx, sourceDirs(gens), cfg.App.Watch.Debounce, logger, rebuild)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}

	app.logger.Info("Configuration loaded",
		slog.Int("feeds", len(app.config.Feeds)),
		slog.Int("workers", app.config.App.Workers),
		slog.String("log_level", app.config.App.LogLevel.String()))
	return app, nil
}

// batch builds one generator per configured feed. extra observers receive
// events next to the logger and the WithObserver observers.
func (a *application) batch(extra generator.Observers) (*generator.Batch, []*generator.Generator, error) {
	obs := generator.Observers{generator.NewLogObserver(a.logger)}
	obs = append(obs, a.observers...)
	obs = append(obs, extra...)

	batch := generator.NewBatch(0)
	gens := make([]*generator.Generator, 0, len(a.config.Feeds))
	for _, fc := range a.config.Feeds {
		g, err := newGenerator(fc, a.config.App.Workers, obs)
		if err != nil {
			return nil, nil, err
		}
		gens = append(gens, g)
		batch.Add(g)
	}
	return batch, gens, nil
}

func newGenerator(fc FeedConfig, workers int, obs generator.Observer) (*generator.Generator, error) {
	less, err := generator.SortPreset(fc.Sort)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", fc.Name, err)
	}
	opts := []generator.Option{
		generator.WithObserver(obs),
		generator.WithWorkers(workers),
		generator.WithSummaryLength(fc.SummaryLength),
		generator.WithHooks(generator.Hooks{Less: less}),
	}
	fo := generator.FormatOptions{IncludeContent: fc.IncludeContent}
	metadata := fc.Metadata.Feed()

	switch fc.Format {
	case FormatHTML:
		tmpl, err := render.LoadTemplate(fc.Template)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", fc.Name, err)
		}
		return generator.NewHTML(fc.Name, fc.Settings, metadata, tmpl, fo, opts...)
	default:
		return generator.NewJSON(fc.Name, fc.Settings, metadata, fo, opts...)
	}
}

func sourceDirs(gens []*generator.Generator) []string {
	seen := make(map[string]struct{}, len(gens))
	dirs := make([]string, 0, len(gens))
	for _, g := range gens {
		dir := g.Settings().SourceDirectory
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// serialize prevents overlapping rebuilds from the watcher and the HTTP
// trigger.
func serialize(fn func(context.Context) error) func(context.Context) error {
	var mu sync.Mutex
	return func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		return fn(ctx)
	}
}
