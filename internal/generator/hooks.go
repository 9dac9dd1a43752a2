package generator

import (
	"context"
	"fmt"

	"github.com/starford/markdownfeeds/internal/document"
	"github.com/starford/markdownfeeds/internal/feed"
)

// Exporter writes one assembled feed page.
type Exporter interface {
	Export(ctx context.Context, f *feed.Feed) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context, f *feed.Feed) error

func (fn ExporterFunc) Export(ctx context.Context, f *feed.Feed) error { return fn(ctx, f) }

// Hooks are the extension points of a run. A nil hook uses its default.
type Hooks struct {
	// FilterPaths post-filters the discovered source paths. Default: identity.
	FilterPaths func(paths []string) ([]string, error)
	// ProcessDocument post-processes every loaded document. Default: identity.
	ProcessDocument func(doc *document.Document) (*document.Document, error)
	// Transform turns a document into an item. Default: an item holding
	// every front matter key.
	Transform func(doc *document.Document) (*feed.Item, error)
	// InjectDetails adds custom fields to a transformed item. Default: no-op.
	InjectDetails func(item *feed.Item, doc *document.Document) error
	// Less orders items. Default: discovery order.
	Less func(a, b *feed.Item) bool
	// NewFeed constructs an empty page. Default: feed.NewFeed.
	NewFeed func() *feed.Feed
}

// DefaultTransform copies every front matter key into a schema-less item.
func DefaultTransform(doc *document.Document) (*feed.Item, error) {
	item := feed.NewItem()
	item.InjectDocument(doc)
	return item, nil
}

// JSONTransform returns the transform of the JSON and HTML generators: the
// front matter plus the computed id, date_published and summary. With
// includeContent the rendered body is added as content_html.
func JSONTransform(includeContent bool) func(*document.Document) (*feed.Item, error) {
	return func(doc *document.Document) (*feed.Item, error) {
		item := feed.NewJSONItem()
		item.InjectDocument(doc)
		item.SetID(doc.ID())

		// A zero date clears any date_published copied from front matter.
		date, _, err := doc.Date()
		if err != nil {
			return nil, err
		}
		item.SetDatePublished(date)

		summary, err := doc.Summary()
		if err != nil {
			return nil, err
		}
		item.SetSummary(summary)

		if includeContent {
			html, err := doc.HTML()
			if err != nil {
				return nil, err
			}
			item.SetContentHTML(html)
		}
		return item, nil
	}
}

func (h Hooks) filterPaths(paths []string) ([]string, error) {
	if h.FilterPaths == nil {
		return paths, nil
	}
	return h.FilterPaths(paths)
}

func (h Hooks) processDocument(doc *document.Document) (*document.Document, error) {
	if h.ProcessDocument == nil {
		return doc, nil
	}
	return h.ProcessDocument(doc)
}

func (h Hooks) transform(doc *document.Document) (*feed.Item, error) {
	transform := h.Transform
	if transform == nil {
		transform = DefaultTransform
	}
	item, err := transform(doc)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("transform returned no item")
	}
	if h.InjectDetails != nil {
		if err := h.InjectDetails(item, doc); err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (h Hooks) newFeed() *feed.Feed {
	if h.NewFeed == nil {
		return feed.NewFeed()
	}
	return h.NewFeed()
}
