package generator

import (
	"fmt"
	"strings"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/feed"
)

// Sort presets accepted by SortPreset.
const (
	SortNone     = ""
	SortDateDesc = "date_desc"
	SortDateAsc  = "date_asc"
	SortTitle    = "title"
)

// SortPreset returns the item order for a named preset. SortNone keeps
// discovery order and returns nil. Items without date_published sort last
// for the date presets.
func SortPreset(name string) (func(a, b *feed.Item) bool, error) {
	switch name {
	case SortNone:
		return nil, nil
	case SortDateDesc:
		return byDate(true), nil
	case SortDateAsc:
		return byDate(false), nil
	case SortTitle:
		return func(a, b *feed.Item) bool {
			return strings.ToLower(a.Title()) < strings.ToLower(b.Title())
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", apperr.ErrConfiguration, name)
	}
}

// byDate compares date_published values, which are RFC 3339 in UTC and
// therefore order lexically.
func byDate(desc bool) func(a, b *feed.Item) bool {
	return func(a, b *feed.Item) bool {
		da, db := a.DatePublished(), b.DatePublished()
		switch {
		case da == db:
			return false
		case da == "":
			return false
		case db == "":
			return true
		case desc:
			return da > db
		default:
			return da < db
		}
	}
}
