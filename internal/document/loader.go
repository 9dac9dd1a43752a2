package document

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/markdownfeeds/internal/attrs"
	"github.com/starford/markdownfeeds/internal/render"
)

const separator = "---"

// Reader reads raw file contents.
type Reader interface {
	Read(path string) ([]byte, error)
}

// Loader reads and parses Markdown documents. It is safe for concurrent use.
type Loader struct {
	files         Reader
	markdown      render.Markdown
	text          render.TextExtractor
	summaryLength int
}

// Option configures a Loader.
type Option func(*Loader)

// WithMarkdown overrides the Markdown renderer.
func WithMarkdown(md render.Markdown) Option {
	return func(l *Loader) { l.markdown = md }
}

// WithTextExtractor overrides the HTML to text extractor.
func WithTextExtractor(te render.TextExtractor) Option {
	return func(l *Loader) { l.text = te }
}

// WithSummaryLength sets the maximum derived summary length.
func WithSummaryLength(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.summaryLength = n
		}
	}
}

// NewLoader returns a loader reading through files.
func NewLoader(files Reader, opts ...Option) *Loader {
	l := &Loader{
		files:         files,
		markdown:      render.NewMarkdownRenderer(),
		text:          render.NewTextExtractor(),
		summaryLength: DefaultSummaryLength,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the file at path and parses it.
func (l *Loader) Load(path string) (*Document, error) {
	data, err := l.files.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w: %w", path, ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return l.Parse(path, data)
}

// Parse splits raw into front matter and body. The text must contain two
// separator lines: an (empty) preamble, the YAML front matter and the body.
func (l *Loader) Parse(path string, raw []byte) (*Document, error) {
	segments := strings.SplitN(string(raw), separator, 3)
	if len(segments) != 3 {
		return nil, fmt.Errorf("document %s: %w: expected front matter delimited by %q", path, ErrInvalidFrontMatter, separator)
	}
	fm, err := parseFrontMatter(segments[1])
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return &Document{
		path:        path,
		frontMatter: fm,
		body:        strings.Trim(segments[2], "\n"),
		loader:      l,
	}, nil
}

// parseFrontMatter decodes a YAML mapping, keeping key order.
func parseFrontMatter(src string) (*attrs.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: front matter is not a key/value mapping", ErrInvalidFrontMatter)
	}
	mapping := doc.Content[0]
	out := attrs.NewMap()
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		var v any
		if err := val.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrInvalidFrontMatter, key.Value, err)
		}
		out.Set(key.Value, stringKeys(v))
	}
	return out, nil
}

// stringKeys rewrites nested mappings with non-string keys, such as
// {2024: done}, into map[string]any so the value can be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case map[string]any:
		for k, e := range t {
			t[k] = stringKeys(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = stringKeys(e)
		}
		return t
	default:
		return v
	}
}
