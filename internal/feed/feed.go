package feed

import (
	"fmt"

	"github.com/starford/markdownfeeds/internal/attrs"
)

// Feed is one exported page: an ordered slice of items, pagination counters
// and feed level metadata.
type Feed struct {
	store      *attrs.Store
	required   []string
	items      []*Item
	page       int
	totalPages int
	totalItems int
}

// NewFeed returns a feed without a schema.
func NewFeed() *Feed {
	return &Feed{store: attrs.New()}
}

// NewJSONFeed returns a feed with the JSON Feed keys declared. Check requires
// version and title.
func NewJSONFeed() *Feed {
	return &Feed{
		store:    attrs.New(jsonFeedKeys...),
		required: []string{KeyVersion, KeyTitle},
	}
}

func (f *Feed) Set(key string, value any) { f.store.Set(key, value) }
func (f *Feed) Get(key string) (any, error) { return f.store.Get(key) }
func (f *Feed) Has(key string) bool { return f.store.Has(key) }
func (f *Feed) HasValue(key string) bool { return f.store.HasValue(key) }
func (f *Feed) Keys() []string { return f.store.Keys() }

// InjectValues sets every entry of values.
func (f *Feed) InjectValues(values map[string]any) { f.store.InjectValues(values) }

func (f *Feed) Title() string { return stringValue(f.store, KeyTitle) }
func (f *Feed) Version() string { return stringValue(f.store, KeyVersion) }
func (f *Feed) FeedURL() string { return stringValue(f.store, KeyFeedURL) }
func (f *Feed) NextURL() string { return stringValue(f.store, KeyNextURL) }

func (f *Feed) SetTitle(title string) { f.store.Set(KeyTitle, optional(title)) }
func (f *Feed) SetVersion(v string) { f.store.Set(KeyVersion, optional(v)) }
func (f *Feed) SetDescription(d string) { f.store.Set(KeyDescription, optional(d)) }
func (f *Feed) SetHomePageURL(url string) { f.store.Set(KeyHomePageURL, optional(url)) }
func (f *Feed) SetFeedURL(url string) { f.store.Set(KeyFeedURL, optional(url)) }
func (f *Feed) SetNextURL(url string) { f.store.Set(KeyNextURL, optional(url)) }
func (f *Feed) SetIcon(url string) { f.store.Set(KeyIcon, optional(url)) }
func (f *Feed) SetFavicon(url string) { f.store.Set(KeyFavicon, optional(url)) }
func (f *Feed) SetAuthor(a *Author) { f.store.Set(KeyAuthor, a) }

// SetHubs stores the hub list; an empty list clears it.
func (f *Feed) SetHubs(hubs []*Hub) {
	if len(hubs) == 0 {
		f.store.Set(KeyHubs, nil)
		return
	}
	list := make([]any, len(hubs))
	for i, h := range hubs {
		list[i] = h
	}
	f.store.Set(KeyHubs, list)
}

// SetItems replaces the page items.
func (f *Feed) SetItems(items []*Item) { f.items = items }

// Items returns the page items.
func (f *Feed) Items() []*Item { return f.items }

// SetPagination records the page number (1-based), the page count and the
// number of items across all pages.
func (f *Feed) SetPagination(page, totalPages, totalItems int) {
	f.page, f.totalPages, f.totalItems = page, totalPages, totalItems
}

func (f *Feed) Page() int { return f.page }
func (f *Feed) TotalPages() int { return f.totalPages }
func (f *Feed) TotalItems() int { return f.totalItems }

// Merge overlays every attribute of other that holds a value.
func (f *Feed) Merge(other *Feed) {
	if other == nil {
		return
	}
	for _, k := range other.store.Keys() {
		if !other.store.HasValue(k) {
			continue
		}
		v, _ := other.store.Get(k)
		f.store.Set(k, v)
	}
}

// Check validates required keys and nested author and hub records.
func (f *Feed) Check() error {
	if err := requireValues(f.store, f.required...); err != nil {
		return fmt.Errorf("feed page %d: %w", f.page, err)
	}
	if err := checkNested(f.store); err != nil {
		return fmt.Errorf("feed page %d: %w", f.page, err)
	}
	return nil
}

// Dump exports the metadata followed by items, page, total_pages and
// total_items.
func (f *Feed) Dump() *attrs.Map {
	s := f.store.Clone()
	items := make([]any, len(f.items))
	for i, it := range f.items {
		items[i] = it
	}
	s.Set(KeyItems, items)
	s.Set(KeyPage, f.page)
	s.Set(KeyTotalPages, f.totalPages)
	s.Set(KeyTotalItems, f.totalItems)
	return s.Dump()
}
