// Package generator turns a directory of Markdown documents into paginated
// feed pages.
//
// A run is a fixed sequence of stages: discover, load, transform, validate,
// sort, paginate, assemble and export. Load, transform and export fan out
// over a bounded worker pool and every stage waits for the previous one to
// finish completely. Any error fails the whole run.
package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/document"
	"github.com/starford/markdownfeeds/internal/feed"
	"github.com/starford/markdownfeeds/internal/storage"
)

// MarkdownExt is the extension of discovered source files.
const MarkdownExt = ".md"

// Generator runs the pipeline for one feed.
type Generator struct {
	name          string
	settings      Settings
	metadata      *feed.Feed
	exporter      Exporter
	hooks         Hooks
	observer      Observer
	workers       int
	summaryLength int
}

// Option configures a Generator.
type Option func(*Generator)

// WithHooks sets the extension hooks. Unset hooks keep the generator defaults.
func WithHooks(h Hooks) Option {
	return func(g *Generator) {
		if h.FilterPaths != nil {
			g.hooks.FilterPaths = h.FilterPaths
		}
		if h.ProcessDocument != nil {
			g.hooks.ProcessDocument = h.ProcessDocument
		}
		if h.Transform != nil {
			g.hooks.Transform = h.Transform
		}
		if h.InjectDetails != nil {
			g.hooks.InjectDetails = h.InjectDetails
		}
		if h.Less != nil {
			g.hooks.Less = h.Less
		}
		if h.NewFeed != nil {
			g.hooks.NewFeed = h.NewFeed
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(g *Generator) { g.observer = o }
}

// WithWorkers bounds the worker pool of each parallel stage. Values below 1
// use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// WithSummaryLength sets the maximum length of derived summaries.
func WithSummaryLength(n int) Option {
	return func(g *Generator) { g.summaryLength = n }
}

// WithExporter replaces the exporter.
func WithExporter(e Exporter) Option {
	return func(g *Generator) { g.exporter = e }
}

// New returns a generator using the default hooks. metadata is merged into
// every page and may be nil.
func New(name string, settings Settings, metadata *feed.Feed, exporter Exporter, opts ...Option) (*Generator, error) {
	settings, err := prepare(name, settings)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = feed.NewFeed()
	}
	g := &Generator{
		name:     name,
		settings: settings,
		metadata: metadata,
		exporter: exporter,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.exporter == nil {
		return nil, fmt.Errorf("generator %s: %w: exporter is required", name, apperr.ErrConfiguration)
	}
	if g.observer == nil {
		g.observer = nopObserver{}
	}
	if g.workers < 1 {
		g.workers = runtime.GOMAXPROCS(0)
	}
	return g, nil
}

func prepare(name string, settings Settings) (Settings, error) {
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("generator %s: %w: %w", name, apperr.ErrConfiguration, err)
	}
	settings, err := settings.withDefaults()
	if err != nil {
		return settings, fmt.Errorf("generator %s: %w", name, err)
	}
	return settings, nil
}

// Name returns the generator name used in events and errors.
func (g *Generator) Name() string { return g.name }

// Settings returns the effective settings, defaults applied.
func (g *Generator) Settings() Settings { return g.settings }

// Run executes every stage. Pages are only exported once all items were
// loaded, transformed and validated.
func (g *Generator) Run(ctx context.Context) error {
	err := g.run(ctx)
	if err != nil {
		g.emit(Event{Kind: EventFailed, Err: err})
		return fmt.Errorf("generator %s: %w", g.name, err)
	}
	return nil
}

func (g *Generator) run(ctx context.Context) error {
	source, err := storage.NewFS(g.settings.SourceDirectory)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}

	paths, err := g.discover(source)
	if err != nil {
		return err
	}
	g.emit(Event{Kind: EventDiscovered, Path: g.settings.SourceDirectory, Count: len(paths)})

	loader := document.NewLoader(source, document.WithSummaryLength(g.summaryLength))
	docs, err := parallelMap(ctx, g.workers, paths, func(_ context.Context, path string) (*document.Document, error) {
		doc, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		return g.hooks.processDocument(doc)
	})
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	g.emit(Event{Kind: EventLoaded, Count: len(docs)})

	items, err := parallelMap(ctx, g.workers, docs, func(_ context.Context, doc *document.Document) (*feed.Item, error) {
		item, err := g.hooks.transform(doc)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", doc.Path(), err)
		}
		return item, nil
	})
	if err != nil {
		return err
	}
	g.emit(Event{Kind: EventTransformed, Count: len(items)})

	for _, item := range items {
		if err := item.Check(); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
	}
	g.emit(Event{Kind: EventValidated, Count: len(items)})

	sortStable(items, g.hooks.Less)

	pages, err := g.assemble(items)
	if err != nil {
		return err
	}
	g.emit(Event{Kind: EventPaginated, Count: len(pages)})

	exp, ctx := errgroup.WithContext(ctx)
	exp.SetLimit(g.workers)
	for _, page := range pages {
		exp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := g.exporter.Export(ctx, page); err != nil {
				return fmt.Errorf("export page %d: %w", page.Page(), err)
			}
			g.emit(Event{Kind: EventPageExported, Page: page.Page(), Count: len(page.Items())})
			return nil
		})
	}
	if err := exp.Wait(); err != nil {
		return err
	}
	g.emit(Event{Kind: EventCompleted, Count: len(pages)})
	return nil
}

// discover lists the Markdown files under the source directory, minus
// skipped base names, then applies the path filter hook.
func (g *Generator) discover(source storage.Provider) ([]string, error) {
	all, err := source.List("", MarkdownExt)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	paths := make([]string, 0, len(all))
	for _, p := range all {
		if g.settings.Skips(filepath.Base(p)) {
			continue
		}
		paths = append(paths, p)
	}
	paths, err = g.hooks.filterPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("filter paths: %w", err)
	}
	return paths, nil
}

// assemble builds one checked feed per page, each carrying the merged
// metadata.
func (g *Generator) assemble(items []*feed.Item) ([]*feed.Feed, error) {
	chunks := paginate(items, g.settings.ItemsPerExport)
	pages := make([]*feed.Feed, 0, len(chunks))
	for i, chunk := range chunks {
		f := g.hooks.newFeed()
		f.Merge(g.metadata)
		f.SetItems(chunk)
		f.SetPagination(i+1, len(chunks), len(items))
		if err := f.Check(); err != nil {
			return nil, fmt.Errorf("assemble: %w", err)
		}
		pages = append(pages, f)
	}
	return pages, nil
}

func (g *Generator) emit(e Event) {
	e.Generator = g.name
	g.observer.Observe(e)
}

// sortStable orders items with less, keeping discovery order for ties. A nil
// less leaves items untouched.
func sortStable(items []*feed.Item, less func(a, b *feed.Item) bool) {
	if less == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// paginate splits items into pages of size. A size below 1 puts every item on
// a single page. No items with a positive size yields no pages.
func paginate(items []*feed.Item, size int) [][]*feed.Item {
	if size < 1 {
		return [][]*feed.Item{items}
	}
	pages := make([][]*feed.Item, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, items[start:end])
	}
	return pages
}

// parallelMap applies fn to every input on at most workers goroutines and
// returns the results in input order. The first error cancels the remaining
// work and is returned once all started tasks have finished.
func parallelMap[In, Out any](ctx context.Context, workers int, in []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(in))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range in {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, v)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
