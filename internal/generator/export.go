package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/starford/markdownfeeds/internal/attrs"
	"github.com/starford/markdownfeeds/internal/feed"
	"github.com/starford/markdownfeeds/internal/render"
	"github.com/starford/markdownfeeds/internal/storage"
)

const jsonIndent = "  "

// Template keys added next to the feed attributes.
const (
	tmplNextPageURL     = "nextPageUrl"
	tmplPreviousPageURL = "previousPageUrl"
	tmplTitle           = "title"
	tmplFiles           = "files"
)

// JSONPageName returns the file name of a JSON page: feed.json for the
// first page, then 1.json, 2.json and so on.
func JSONPageName(page int) string {
	if page <= 1 {
		return "feed.json"
	}
	return strconv.Itoa(page-1) + ".json"
}

// HTMLPageName returns the file name of an HTML page: index.html for the
// first page, then 2.html, 3.html and so on.
func HTMLPageName(page int) string {
	if page <= 1 {
		return "index.html"
	}
	return strconv.Itoa(page) + ".html"
}

// pageURL joins name to the base URL when one is configured.
func pageURL(baseURL, name string) string {
	if baseURL == "" {
		return name
	}
	return baseURL + "/" + name
}

// JSONExporter writes pages as indented JSON Feed documents.
type JSONExporter struct {
	target  string
	baseURL string
}

// NewJSONExporter returns an exporter writing into the target directory of s.
func NewJSONExporter(s Settings) *JSONExporter {
	return &JSONExporter{target: s.TargetDirectory, baseURL: s.BaseURL()}
}

// Export sets feed_url and next_url, then writes the page.
func (e *JSONExporter) Export(_ context.Context, f *feed.Feed) error {
	name := JSONPageName(f.Page())
	f.SetFeedURL(pageURL(e.baseURL, name))
	if f.Page() < f.TotalPages() {
		f.SetNextURL(pageURL(e.baseURL, JSONPageName(f.Page()+1)))
	} else {
		f.SetNextURL("")
	}

	data, err := json.MarshalIndent(f.Dump(), "", jsonIndent)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writePage(e.target, name, data)
}

// HTMLExporter renders pages through a template.
type HTMLExporter struct {
	target   string
	baseURL  string
	template render.Template
}

// NewHTMLExporter returns an exporter rendering tmpl into the target
// directory of s.
func NewHTMLExporter(s Settings, tmpl render.Template) *HTMLExporter {
	return &HTMLExporter{target: s.TargetDirectory, baseURL: s.BaseURL(), template: tmpl}
}

// Export renders the page with the feed attributes, the item dumps as files
// and the previous and next page links.
func (e *HTMLExporter) Export(_ context.Context, f *feed.Feed) error {
	name := HTMLPageName(f.Page())

	data := attrs.Plain(f.Dump())
	if data == nil {
		data = map[string]any{}
	}
	files := make([]any, 0, len(f.Items()))
	for _, item := range f.Items() {
		file := attrs.Plain(item.Dump())
		// An untitled item must not resolve title from the enclosing feed.
		if _, ok := file[tmplTitle]; !ok {
			file[tmplTitle] = ""
		}
		files = append(files, file)
	}
	data[tmplFiles] = files
	if title := f.Title(); title != "" {
		data[tmplTitle] = title
	}
	if f.Page() > 1 {
		data[tmplPreviousPageURL] = pageURL(e.baseURL, HTMLPageName(f.Page()-1))
	}
	if f.Page() < f.TotalPages() {
		data[tmplNextPageURL] = pageURL(e.baseURL, HTMLPageName(f.Page()+1))
	}

	out, err := e.template.Render(data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return writePage(e.target, name, out)
}

func writePage(target, name string, data []byte) error {
	dst, err := storage.Ensure(target)
	if err != nil {
		return fmt.Errorf("target directory: %w", err)
	}
	if err := dst.Write(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
