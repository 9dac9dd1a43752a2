package feed

import (
	"fmt"

	"github.com/starford/markdownfeeds/internal/apperr"
	"github.com/starford/markdownfeeds/internal/attrs"
)

// Author is the JSON Feed author object.
type Author struct {
	store *attrs.Store
}

// NewAuthor returns an author. Empty arguments are left unset.
func NewAuthor(name, url, avatar string) *Author {
	a := &Author{store: attrs.New(authorKeys...)}
	a.store.Set("name", optional(name))
	a.store.Set("url", optional(url))
	a.store.Set("avatar", optional(avatar))
	return a
}

func (a *Author) Name() string { return stringValue(a.store, "name") }
func (a *Author) URL() string { return stringValue(a.store, "url") }
func (a *Author) Avatar() string { return stringValue(a.store, "avatar") }

// Set stores an extension attribute.
func (a *Author) Set(key string, value any) { a.store.Set(key, value) }

// Check requires at least one of name, url or avatar.
func (a *Author) Check() error {
	if !a.store.HasValue("name") && !a.store.HasValue("url") && !a.store.HasValue("avatar") {
		return fmt.Errorf("author: %w: one of name, url or avatar is required", apperr.ErrValidation)
	}
	return nil
}

func (a *Author) Dump() *attrs.Map { return a.store.Dump() }

// Hub is a JSON Feed subscription hub.
type Hub struct {
	store *attrs.Store
}

// NewHub returns a hub of the given type, e.g. "WebSub".
func NewHub(typ, url string) *Hub {
	h := &Hub{store: attrs.New(hubKeys...)}
	h.store.Set("type", optional(typ))
	h.store.Set("url", optional(url))
	return h
}

func (h *Hub) Type() string { return stringValue(h.store, "type") }
func (h *Hub) URL() string { return stringValue(h.store, "url") }

// Check requires both type and url.
func (h *Hub) Check() error {
	if !h.store.HasValue("type") || !h.store.HasValue("url") {
		return fmt.Errorf("hub: %w: both type and url are required", apperr.ErrValidation)
	}
	return nil
}

func (h *Hub) Dump() *attrs.Map { return h.store.Dump() }
