// Package feed holds the records exported by the generators: feed items, the
// JSON Feed author and hub sub-records, and the paginated feed itself.
package feed

import (
	"fmt"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/attrs"
)

// JSONFeedVersion is the version URL written into every JSON feed.
const JSONFeedVersion = "https://jsonfeed.org/version/1"

// Item keys recognised by the JSON Feed schema.
const (
	KeyID            = "id"
	KeyURL           = "url"
	KeyExternalURL   = "external_url"
	KeyTitle         = "title"
	KeyContentHTML   = "content_html"
	KeyContentText   = "content_text"
	KeySummary       = "summary"
	KeyImage         = "image"
	KeyBannerImage   = "banner_image"
	KeyDatePublished = "date_published"
	KeyDateModified  = "date_modified"
	KeyAuthor        = "author"
	KeyTags          = "tags"
)

// Feed keys recognised by the JSON Feed schema.
const (
	KeyVersion     = "version"
	KeyHomePageURL = "home_page_url"
	KeyFeedURL     = "feed_url"
	KeyDescription = "description"
	KeyUserComment = "user_comment"
	KeyNextURL     = "next_url"
	KeyIcon        = "icon"
	KeyFavicon     = "favicon"
	KeyExpired     = "expired"
	KeyHubs        = "hubs"
	KeyItems       = "items"
	KeyPage        = "page"
	KeyTotalPages  = "total_pages"
	KeyTotalItems  = "total_items"
)

var (
	jsonItemKeys = []string{
		KeyID, KeyURL, KeyExternalURL, KeyTitle, KeyContentHTML, KeyContentText, KeySummary,
		KeyImage, KeyBannerImage, KeyDatePublished, KeyDateModified, KeyAuthor, KeyTags,
	}
	jsonFeedKeys = []string{
		KeyVersion, KeyTitle, KeyHomePageURL, KeyFeedURL, KeyDescription, KeyUserComment,
		KeyNextURL, KeyIcon, KeyFavicon, KeyAuthor, KeyExpired, KeyHubs, KeyItems,
	}
	authorKeys = []string{"name", "url", "avatar"}
	hubKeys    = []string{"type", "url"}
)

// Checker is implemented by records that validate themselves.
type Checker interface {
	Check() error
}

// checkNested validates every nested record held in s.
func checkNested(s *attrs.Store) error {
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		if err := checkValue(v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
	}
	return nil
}

func checkValue(v any) error {
	if attrs.IsAbsent(v) {
		return nil
	}
	switch t := v.(type) {
	case Checker:
		return t.Check()
	case []any:
		for i, e := range t {
			if err := checkValue(e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	}
	return nil
}

func requireValues(s *attrs.Store, keys ...string) error {
	for _, k := range keys {
		if !s.HasValue(k) {
			return fmt.Errorf("%w: %q: %w", apperr.ErrValidation, k, apperr.ErrMissingField)
		}
	}
	return nil
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringValue(s *attrs.Store, key string) string {
	v, err := s.Get(key)
	if err != nil || attrs.IsAbsent(v) {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}
