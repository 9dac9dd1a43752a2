package render

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
)

//go:embed templates/feed.html
var defaultTemplate string

// Template renders a page from a data mapping.
type Template interface {
	Render(data map[string]any) ([]byte, error)
}

// MustacheTemplate is a parsed mustache template. Parsed templates are
// read-only and may be rendered concurrently.
type MustacheTemplate struct {
	tpl *mustache.Template
}

// NewTemplate parses a mustache template from source text.
func NewTemplate(src string) (*MustacheTemplate, error) {
	tpl, err := mustache.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("render: parse template: %w", err)
	}
	return &MustacheTemplate{tpl: tpl}, nil
}

// LoadTemplate parses the template at path, or the embedded default when path
// is empty.
func LoadTemplate(path string) (*MustacheTemplate, error) {
	if path == "" {
		return NewTemplate(defaultTemplate)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read template %s: %w", path, err)
	}
	return NewTemplate(string(src))
}

// Render executes the template.
func (t *MustacheTemplate) Render(data map[string]any) ([]byte, error) {
	out, err := t.tpl.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render: execute template: %w", err)
	}
	return []byte(out), nil
}
