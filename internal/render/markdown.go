// Package render adapts the Markdown, plain-text and template engines used by
// the feed pipeline.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown converts Markdown source into HTML.
type Markdown interface {
	Render(src []byte) ([]byte, error)
}

// GoldmarkRenderer is a stateless goldmark engine safe for concurrent use.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer returns a renderer with GFM tables and fenced code.
func NewMarkdownRenderer() *GoldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &GoldmarkRenderer{md: md}
}

// Render converts src to HTML.
func (r *GoldmarkRenderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render: markdown: %w", err)
	}
	return buf.Bytes(), nil
}
