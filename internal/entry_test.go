package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/generator"
	"github.com/starford/markdownfeeds/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestBuild_AllFeeds(t *testing.T) {
	src, _ := testutil.SourceDir(t, map[string]string{
		"2024-01-01-first.md":  testutil.Note("First entry.", "title", "First"),
		"2024-02-01-second.md": testutil.Note("Second entry.", "title", "Second"),
		"README.md":            "not a feed entry",
	})
	out := t.TempDir()

	cfg := NewDefaultConfig()
	cfg.Feeds = []FeedConfig{
		{
			Name:     "json",
			Sort:     generator.SortDateDesc,
			Settings: generator.Settings{SourceDirectory: src, TargetDirectory: filepath.Join(out, "json"), SkipFiles: []string{"README.md"}},
			Metadata: MetadataConfig{Title: "Log", Author: &AuthorConfig{Name: "Kirk"}},
		},
		{
			Name:     "html",
			Format:   FormatHTML,
			Settings: generator.Settings{SourceDirectory: src, TargetDirectory: filepath.Join(out, "html"), ItemsPerExport: 1, SkipFiles: []string{"README.md"}},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	completed := map[string]bool{}
	obs := generator.ObserverFunc(func(e generator.Event) {
		if e.Kind == generator.EventCompleted {
			mu.Lock()
			completed[e.Generator] = true
			mu.Unlock()
		}
	})

	if err := Build(context.Background(), WithConfig(cfg), WithLogger(quietLogger()), WithObserver(obs)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	var page struct {
		Title string `json:"title"`
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	if err := json.Unmarshal(testutil.ReadFile(t, out, "json/feed.json"), &page); err != nil {
		t.Fatal(err)
	}
	if page.Title != "Log" || len(page.Items) != 2 || page.Items[0].Title != "Second" {
		t.Errorf("feed = %+v", page)
	}
	testutil.ReadFile(t, out, "html/index.html")
	testutil.ReadFile(t, out, "html/2.html")

	mu.Lock()
	defer mu.Unlock()
	if !completed["json"] || !completed["html"] {
		t.Errorf("completed = %v", completed)
	}
}

func TestBuild_SurfacesFailure(t *testing.T) {
	src, _ := testutil.SourceDir(t, map[string]string{"bad.md": "no front matter"})
	cfg := NewDefaultConfig()
	cfg.Feeds = []FeedConfig{{Name: "bad", Format: FormatJSON, Settings: generator.Settings{SourceDirectory: src, TargetDirectory: t.TempDir()}}}

	err := Build(context.Background(), WithConfig(cfg), WithLogger(quietLogger()))
	if !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestBuild_RequiresConfig(t *testing.T) {
	if err := Build(context.Background(), WithLogger(quietLogger())); err == nil {
		t.Error("expected error without config")
	}
}
