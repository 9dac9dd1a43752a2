package generator

import (
	"fmt"

	"github.com/starford/markdownfeeds/internal/feed"
	"github.com/starford/markdownfeeds/internal/render"
)

// DefaultFeedTitle is used when the feed metadata carries no title.
const DefaultFeedTitle = "Untitled Feed"

// FormatOptions configures the JSON and HTML generators.
type FormatOptions struct {
	// IncludeContent adds the rendered body as content_html.
	IncludeContent bool
}

// NewJSON returns a generator writing JSON Feed pages to the target
// directory. The metadata version is fixed to feed.JSONFeedVersion.
func NewJSON(name string, settings Settings, metadata *feed.Feed, fo FormatOptions, opts ...Option) (*Generator, error) {
	s, err := prepare(name, settings)
	if err != nil {
		return nil, err
	}
	return New(name, s, jsonMetadata(metadata), NewJSONExporter(s), append(jsonOptions(fo), opts...)...)
}

// NewHTML returns a generator rendering pages through tmpl. A nil tmpl uses
// the embedded default template.
func NewHTML(name string, settings Settings, metadata *feed.Feed, tmpl render.Template, fo FormatOptions, opts ...Option) (*Generator, error) {
	s, err := prepare(name, settings)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		def, err := render.LoadTemplate("")
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", name, err)
		}
		tmpl = def
	}
	return New(name, s, jsonMetadata(metadata), NewHTMLExporter(s, tmpl), append(jsonOptions(fo), opts...)...)
}

func jsonOptions(fo FormatOptions) []Option {
	return []Option{WithHooks(Hooks{
		Transform: JSONTransform(fo.IncludeContent),
		NewFeed:   feed.NewJSONFeed,
	})}
}

// jsonMetadata copies m into a JSON feed carrying the version and a title.
func jsonMetadata(m *feed.Feed) *feed.Feed {
	out := feed.NewJSONFeed()
	out.Merge(m)
	out.SetVersion(feed.JSONFeedVersion)
	if out.Title() == "" {
		out.SetTitle(DefaultFeedTitle)
	}
	return out
}
