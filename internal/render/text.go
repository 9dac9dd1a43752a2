package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextExtractor strips markup from an HTML fragment.
type TextExtractor interface {
	Text(html string) (string, error)
}

// noiseSelectors never contribute readable text.
var noiseSelectors = []string{"script", "style", "noscript", "iframe", "svg"}

// HTMLText extracts plain text with goquery.
type HTMLText struct{}

// NewTextExtractor returns the goquery based extractor.
func NewTextExtractor() *HTMLText {
	return &HTMLText{}
}

// Text returns the text content of html, keeping the line breaks between
// block elements.
func (HTMLText) Text(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("render: parse html: %w", err)
	}
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
	return doc.Text(), nil
}
