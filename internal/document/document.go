// Package document loads Markdown source files with YAML front matter and
// derives the values a feed item needs from them.
package document

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/attrs"
	"github.com/starford/markdownfeeds/internal/checksum"
)

// Front matter keys with derived semantics.
const (
	KeyID      = "id"
	KeyTitle   = "title"
	KeyDate    = "date"
	KeySummary = "summary"
)

// DefaultSummaryLength is the maximum summary length in characters.
const DefaultSummaryLength = 100

const truncationSuffix = ".."

var (
	ErrFileNotFound       = fmt.Errorf("markdown file %w", apperr.ErrNotFound)
	ErrInvalidFrontMatter = fmt.Errorf("invalid front matter: %w", apperr.ErrParse)
	ErrTitleNotFound      = fmt.Errorf("title: %w", apperr.ErrMissingField)
	ErrDateParse          = fmt.Errorf("date: %w", apperr.ErrParse)
)

var fileDateRe = regexp.MustCompile(`\d+-\d+-\d+`)

var dynamicKeys = map[string]struct{}{
	KeyID: {}, KeyTitle: {}, KeyDate: {}, KeySummary: {},
}

// Document is one parsed Markdown source file. It is immutable once loaded.
type Document struct {
	path        string
	frontMatter *attrs.Map
	body        string
	loader      *Loader
}

// Path returns the document path relative to the source directory.
func (d *Document) Path() string { return d.path }

// FileName returns the base name of the document path.
func (d *Document) FileName() string { return filepath.Base(d.path) }

// Location returns the directory part of the document path.
func (d *Document) Location() string { return filepath.Dir(d.path) }

// Body returns the Markdown body without front matter.
func (d *Document) Body() string { return d.body }

// FrontMatter returns a copy of the parsed front matter.
func (d *Document) FrontMatter() *attrs.Map {
	return copyMap(d.frontMatter, nil)
}

// FilteredFrontMatter returns the front matter without the derived keys
// (id, title, date, summary).
func (d *Document) FilteredFrontMatter() *attrs.Map {
	return copyMap(d.frontMatter, dynamicKeys)
}

// ID returns the front matter id, or a stable hash of the path.
func (d *Document) ID() string {
	if v, ok := d.frontMatter.Get(KeyID); ok && !attrs.IsAbsent(v) {
		return fmt.Sprint(v)
	}
	return checksum.ID(d.path)
}

// Title returns the front matter title.
func (d *Document) Title() (string, error) {
	v, ok := d.frontMatter.Get(KeyTitle)
	if !ok || attrs.IsAbsent(v) {
		return "", fmt.Errorf("document %s: %w", d.path, ErrTitleNotFound)
	}
	return fmt.Sprint(v), nil
}

// Date returns the front matter date, falling back to a date pattern in the
// file name. ok is false when neither exists.
func (d *Document) Date() (t time.Time, ok bool, err error) {
	raw, present := d.frontMatter.Get(KeyDate)
	if !present {
		m := fileDateRe.FindString(d.FileName())
		if m == "" {
			return time.Time{}, false, nil
		}
		raw = m
	}
	if attrs.IsAbsent(raw) {
		return time.Time{}, false, nil
	}
	t, err = parseDate(raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("document %s: %w", d.path, err)
	}
	return t, true, nil
}

// HTML renders the body to HTML.
func (d *Document) HTML() (string, error) {
	out, err := d.loader.markdown.Render([]byte(d.body))
	if err != nil {
		return "", fmt.Errorf("document %s: %w", d.path, err)
	}
	return string(out), nil
}

// Summary returns the front matter summary, or one derived from the rendered
// body: plain text on a single line, truncated to the loader's summary length.
func (d *Document) Summary() (string, error) {
	var text string
	if v, ok := d.frontMatter.Get(KeySummary); ok && !attrs.IsAbsent(v) {
		text = fmt.Sprint(v)
	} else {
		html, err := d.HTML()
		if err != nil {
			return "", err
		}
		text, err = d.loader.text.Text(html)
		if err != nil {
			return "", fmt.Errorf("document %s: %w", d.path, err)
		}
	}
	return truncate(strings.ReplaceAll(text, "\n", " "), d.loader.summaryLength), nil
}

func (d *Document) String() string {
	return d.path
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max])) + truncationSuffix
}

func copyMap(src *attrs.Map, skip map[string]struct{}) *attrs.Map {
	out := attrs.NewMap()
	for pair := src.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := skip[pair.Key]; ok {
			continue
		}
		out.Set(pair.Key, pair.Value)
	}
	return out
}
