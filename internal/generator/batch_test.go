package generator

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/starford/markdownfeeds/internal/feed"
	"github.com/starford/markdownfeeds/internal/testutil"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestBatch_SurfacesEveryFailure(t *testing.T) {
	var ran atomic.Int32
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	b := NewBatch(0,
		runnerFunc(func(context.Context) error { ran.Add(1); return errA }),
		runnerFunc(func(context.Context) error { ran.Add(1); return nil }),
	)
	b.Add(runnerFunc(func(context.Context) error { ran.Add(1); return errC }))

	err := b.Run(context.Background())
	if ran.Load() != 3 {
		t.Errorf("ran = %d, want 3", ran.Load())
	}
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Errorf("err = %v, want both failures", err)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d", b.Len())
	}
}

func TestBatch_Generators(t *testing.T) {
	src, _ := testutil.SourceDir(t, notes(4))
	jsonTarget, htmlTarget := t.TempDir(), t.TempDir()

	jg, err := NewJSON("json", Settings{SourceDirectory: src, TargetDirectory: jsonTarget}, nil, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	hg, err := NewHTML("html", Settings{SourceDirectory: src, TargetDirectory: htmlTarget, ItemsPerExport: 2}, nil, nil, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := NewBatch(2, jg, hg).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	testutil.ReadFile(t, jsonTarget, "feed.json")
	testutil.ReadFile(t, htmlTarget, "index.html")
	testutil.ReadFile(t, htmlTarget, "2.html")
}

func TestSortPreset(t *testing.T) {
	mk := func(title, date string) *feed.Item {
		it := feed.NewJSONItem()
		it.SetTitle(title)
		if date != "" {
			it.Set(feed.KeyDatePublished, date)
		}
		return it
	}
	items := []*feed.Item{
		mk("b", "2024-01-02T00:00:00Z"),
		mk("c", ""),
		mk("A", "2024-03-01T00:00:00Z"),
	}
	order := func(preset string) string {
		less, err := SortPreset(preset)
		if err != nil {
			t.Fatal(err)
		}
		sorted := append([]*feed.Item(nil), items...)
		sortStable(sorted, less)
		var titles []string
		for _, it := range sorted {
			titles = append(titles, it.Title())
		}
		return strings.Join(titles, ",")
	}
	if got := order(SortDateDesc); got != "A,b,c" {
		t.Errorf("date_desc = %s", got)
	}
	if got := order(SortDateAsc); got != "b,A,c" {
		t.Errorf("date_asc = %s", got)
	}
	if got := order(SortTitle); got != "A,b,c" {
		t.Errorf("title = %s", got)
	}
	if less, err := SortPreset(SortNone); err != nil || less != nil {
		t.Error("empty preset should keep discovery order")
	}
	if _, err := SortPreset("random"); err == nil {
		t.Error("unknown preset should fail")
	}
}

func TestObservers(t *testing.T) {
	src, _ := testutil.SourceDir(t, notes(3))
	var buf bytes.Buffer
	var mu sync.Mutex
	var kinds []EventKind
	obs := Observers{
		NewLogObserver(slog.New(slog.NewJSONHandler(&syncWriter{w: &buf}, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		ObserverFunc(func(e Event) {
			mu.Lock()
			defer mu.Unlock()
			kinds = append(kinds, e.Kind)
		}),
	}
	g, err := NewJSON("log", Settings{SourceDirectory: src, TargetDirectory: t.TempDir()}, nil, FormatOptions{}, WithObserver(obs))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []EventKind{EventDiscovered, EventLoaded, EventTransformed, EventValidated, EventPaginated, EventPageExported, EventCompleted}
	mu.Lock()
	defer mu.Unlock()
	if len(kinds) != len(want) {
		t.Fatalf("events = %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
	if !strings.Contains(buf.String(), `"event":"completed"`) || !strings.Contains(buf.String(), `"generator":"log"`) {
		t.Errorf("log output = %s", buf.String())
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
