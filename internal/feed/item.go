package feed

import (
	"fmt"
	"time"

	"github.com/starford/markdownfeeds/internal/attrs"
	"github.com/starford/markdownfeeds/internal/document"
)

// Item is the record produced from one Markdown document.
type Item struct {
	store *attrs.Store
	doc   *document.Document
}

// NewItem returns an item without a schema.
func NewItem() *Item {
	return &Item{store: attrs.New()}
}

// NewJSONItem returns an item with the JSON Feed item keys declared.
func NewJSONItem() *Item {
	return &Item{store: attrs.New(jsonItemKeys...)}
}

// InjectDocument copies every front matter key of doc into the item and
// remembers the source document.
func (i *Item) InjectDocument(doc *document.Document) {
	i.doc = doc
	i.store.Inject(doc.FrontMatter())
}

// InjectValues sets every entry of values.
func (i *Item) InjectValues(values map[string]any) {
	i.store.InjectValues(values)
}

// Document returns the source document, or nil.
func (i *Item) Document() *document.Document { return i.doc }

func (i *Item) Set(key string, value any) { i.store.Set(key, value) }
func (i *Item) Get(key string) (any, error) { return i.store.Get(key) }
func (i *Item) Has(key string) bool { return i.store.Has(key) }
func (i *Item) HasValue(key string) bool { return i.store.HasValue(key) }
func (i *Item) Remove(key string) bool { return i.store.Remove(key) }
func (i *Item) Rename(oldKey, newKey string) error { return i.store.Rename(oldKey, newKey) }
func (i *Item) Keys() []string { return i.store.Keys() }
func (i *Item) IsProtected(key string) bool { return i.store.IsProtected(key) }

func (i *Item) ID() string { return stringValue(i.store, KeyID) }
func (i *Item) Title() string { return stringValue(i.store, KeyTitle) }
func (i *Item) Summary() string { return stringValue(i.store, KeySummary) }
func (i *Item) DatePublished() string { return stringValue(i.store, KeyDatePublished) }

func (i *Item) SetID(id string) { i.store.Set(KeyID, optional(id)) }
func (i *Item) SetURL(url string) { i.store.Set(KeyURL, optional(url)) }
func (i *Item) SetTitle(title string) { i.store.Set(KeyTitle, optional(title)) }
func (i *Item) SetSummary(summary string) { i.store.Set(KeySummary, optional(summary)) }
func (i *Item) SetContentHTML(html string) { i.store.Set(KeyContentHTML, optional(html)) }
func (i *Item) SetAuthor(a *Author) { i.store.Set(KeyAuthor, a) }

// SetDatePublished stores t as RFC 3339 in UTC. A zero time clears the value.
func (i *Item) SetDatePublished(t time.Time) {
	if t.IsZero() {
		i.store.Set(KeyDatePublished, nil)
		return
	}
	i.store.Set(KeyDatePublished, t.UTC().Format(time.RFC3339))
}

// SetTags stores the tag list; nil clears it.
func (i *Item) SetTags(tags []string) {
	if tags == nil {
		i.store.Set(KeyTags, nil)
		return
	}
	list := make([]any, len(tags))
	for n, t := range tags {
		list[n] = t
	}
	i.store.Set(KeyTags, list)
}

// Check validates nested records such as the author.
func (i *Item) Check() error {
	if err := checkNested(i.store); err != nil {
		return fmt.Errorf("item %s: %w", i, err)
	}
	return nil
}

func (i *Item) Dump() *attrs.Map { return i.store.Dump() }

func (i *Item) String() string {
	if t := i.Title(); t != "" {
		return t
	}
	if i.doc != nil {
		return i.doc.Path()
	}
	return i.ID()
}
