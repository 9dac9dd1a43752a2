// Package server serves generated feeds for local preview using chi.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Mount exposes one target directory under /feeds/{Name}/.
type Mount struct {
	Name string `json:"name"`
	Dir  string `json:"-"`
}

// Options configures the router. Nil fields disable the matching route.
type Options struct {
	Mounts  []Mount
	Events  http.Handler
	Status  *Status
	Rebuild func(ctx context.Context) error
}

type feedLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// NewRouter creates a chi router with health checks, the feed file server,
// build status, a rebuild trigger and the SSE endpoint.
func NewRouter(opts Options) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	links := make([]feedLink, 0, len(opts.Mounts))
	for _, m := range opts.Mounts {
		prefix := "/feeds/" + m.Name
		links = append(links, feedLink{Name: m.Name, URL: prefix + "/"})
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(m.Dir)))
		r.Get(prefix, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, prefix+"/", http.StatusMovedPermanently)
		})
		r.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
			if strings.HasSuffix(req.URL.Path, ".json") {
				w.Header().Set("Content-Type", "application/feed+json; charset=utf-8")
			}
			w.Header().Set("Cache-Control", "no-cache")
			fileServer.ServeHTTP(w, req)
		})
	}
	r.Get("/feeds", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, links)
	})

	if opts.Status != nil {
		r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, opts.Status.Snapshot())
		})
	}

	if opts.Rebuild != nil {
		r.Post("/rebuild", func(w http.ResponseWriter, req *http.Request) {
			// A disconnecting client must not abort a half-written export.
			if err := opts.Rebuild(context.WithoutCancel(req.Context())); err != nil {
				slog.Error("rebuild failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	}

	// SSE endpoint.
	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
