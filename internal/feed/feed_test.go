package feed

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/document"
)

func TestAuthor_Check(t *testing.T) {
	if err := NewAuthor("", "", "").Check(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty author err = %v, want ErrValidation", err)
	}
	if err := NewAuthor("", "https://example.com", "").Check(); err != nil {
		t.Errorf("author with url: %v", err)
	}
	if err := NewAuthor("Ann", "", "").Check(); err != nil {
		t.Errorf("author with name: %v", err)
	}
}

func TestHub_Check(t *testing.T) {
	if err := NewHub("WebSub", "").Check(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("hub without url err = %v", err)
	}
	if err := NewHub("WebSub", "https://hub.example").Check(); err != nil {
		t.Errorf("valid hub: %v", err)
	}
}

func TestJSONItem_SchemaAndExtensions(t *testing.T) {
	it := NewJSONItem()
	if !it.IsProtected(KeyDatePublished) || it.IsProtected("mood") {
		t.Error("IsProtected mismatch")
	}
	it.Set("mood", "calm")
	it.SetTitle("Entry")
	it.SetDatePublished(time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600)))
	it.SetTags([]string{"go"})

	raw, err := json.Marshal(it.Dump())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"title":"Entry","date_published":"2024-01-02T02:04:05Z","tags":["go"],"mood":"calm"}`
	if string(raw) != want {
		t.Errorf("dump = %s, want %s", raw, want)
	}
}

func TestItem_CheckNestedAuthor(t *testing.T) {
	it := NewJSONItem()
	it.SetAuthor(NewAuthor("", "", ""))
	if err := it.Check(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	it.SetAuthor(NewAuthor("", "https://example.com", ""))
	if err := it.Check(); err != nil {
		t.Errorf("valid author: %v", err)
	}
	if err := NewItem().Check(); err != nil {
		t.Errorf("default check should pass: %v", err)
	}
}

func TestItem_InjectDocument(t *testing.T) {
	doc, err := document.NewLoader(nil).Parse("a.md", []byte("---\ntitle: T\ncustom: 1\n---\nbody"))
	if err != nil {
		t.Fatal(err)
	}
	it := NewItem()
	it.InjectDocument(doc)
	if it.Document() != doc {
		t.Error("source document not kept")
	}
	if got := strings.Join(it.Keys(), ","); got != "title,custom" {
		t.Errorf("keys = %s", got)
	}
	if it.String() != "T" {
		t.Errorf("String() = %q", it.String())
	}
}

func TestFeed_DumpAndMerge(t *testing.T) {
	meta := NewJSONFeed()
	meta.SetTitle("Log")
	meta.SetAuthor(NewAuthor("Kirk", "", ""))

	f := NewJSONFeed()
	f.SetVersion(JSONFeedVersion)
	f.SetDescription("kept")
	f.Merge(meta)
	f.Merge(NewJSONFeed())

	it := NewJSONItem()
	it.SetID("1")
	f.SetItems([]*Item{it})
	f.SetPagination(2, 3, 21)
	f.SetFeedURL("1.json")

	if err := f.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
	raw, err := json.Marshal(f.Dump())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"version":"https://jsonfeed.org/version/1","title":"Log","feed_url":"1.json","description":"kept",` +
		`"author":{"name":"Kirk"},"items":[{"id":"1"}],"page":2,"total_pages":3,"total_items":21}`
	if string(raw) != want {
		t.Errorf("dump = %s\nwant %s", raw, want)
	}
	if f.Has(KeyPage) {
		t.Error("Dump must not mutate the feed")
	}
}

func TestFeed_Check(t *testing.T) {
	f := NewJSONFeed()
	f.SetVersion(JSONFeedVersion)
	if err := f.Check(); !errors.Is(err, apperr.ErrValidation) || !errors.Is(err, apperr.ErrMissingField) {
		t.Errorf("missing title err = %v", err)
	}
	f.SetTitle("T")
	f.SetHubs([]*Hub{NewHub("WebSub", "")})
	if err := f.Check(); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("invalid hub err = %v", err)
	}
	f.SetHubs(nil)
	if err := f.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}
	if err := NewFeed().Check(); err != nil {
		t.Errorf("plain feed check: %v", err)
	}
}

func TestFeed_EmptyItemsDumpAsList(t *testing.T) {
	f := NewFeed()
	f.SetPagination(1, 1, 0)
	raw, _ := json.Marshal(f.Dump())
	if string(raw) != `{"items":[],"page":1,"total_pages":1,"total_items":0}` {
		t.Errorf("dump = %s", raw)
	}
}
