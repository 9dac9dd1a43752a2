package attrs

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/starford/markdownfeeds/internal/apperr"
)

type record struct {
	store *Store
}

func (r *record) Dump() *Map { return r.store.Dump() }

func TestGet_MissingKeyListsAvailable(t *testing.T) {
	s := New()
	s.Set("title", "Hello")
	s.Set("tags", []string{"go"})

	if s.Has("missing") {
		t.Fatal("Has(missing) = true")
	}
	_, err := s.Get("missing")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error %v is not ErrNotFound", err)
	}
	var ke *KeyError
	if !errors.As(err, &ke) {
		t.Fatalf("error %T is not *KeyError", err)
	}
	if strings.Join(ke.Available, ",") != "title,tags" {
		t.Errorf("available = %v, want [title tags]", ke.Available)
	}
	if !strings.Contains(err.Error(), "title") {
		t.Errorf("message %q should list available keys", err.Error())
	}
}

func TestDump_OmitsAbsentValues(t *testing.T) {
	s := New()
	s.Set("a", "x")
	s.Set("b", nil)
	var nilRecord *record
	s.Set("c", nilRecord)

	d := s.Dump()
	if d.Len() != 1 {
		t.Fatalf("dump len = %d, want 1", d.Len())
	}
	if _, ok := d.Get("b"); ok {
		t.Error("nil value should be omitted")
	}

	s.Set("a", nil)
	if _, ok := s.Dump().Get("a"); ok {
		t.Error("key reset to nil should be omitted from dump")
	}
}

func TestDump_NestedAndOrdered(t *testing.T) {
	inner := &record{store: New("name", "url")}
	inner.store.Set("url", "https://example.com")

	s := New()
	s.Set("z", 1)
	s.Set("author", inner)
	s.Set("list", []any{inner, "plain"})
	s.Set("a", true)

	raw, err := json.Marshal(s.Dump())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"z":1,"author":{"url":"https://example.com"},"list":[{"url":"https://example.com"},"plain"],"a":true}`
	if string(raw) != want {
		t.Errorf("dump = %s, want %s", raw, want)
	}
}

func TestRename(t *testing.T) {
	s := New()
	s.Set("old", 42)
	if err := s.Rename("old", "new"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if s.Has("old") {
		t.Error("old key still present")
	}
	v, err := s.Get("new")
	if err != nil || v != 42 {
		t.Errorf("Get(new) = %v, %v; want 42", v, err)
	}
	if err := s.Rename("nope", "other"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("rename of missing key err = %v", err)
	}
}

func TestProtectedKeysSeeded(t *testing.T) {
	s := New("id", "title")
	if !s.Has("id") || s.HasValue("id") {
		t.Error("protected key should exist without a value")
	}
	if !s.IsProtected("title") || s.IsProtected("custom") {
		t.Error("IsProtected mismatch")
	}
	s.Set("custom", "v")
	s.Set("title", "T")
	if got := strings.Join(s.Keys(), ","); got != "id,title,custom" {
		t.Errorf("keys = %s", got)
	}
	if s.Dump().Len() != 2 {
		t.Errorf("dump should hold title and custom only")
	}
}

func TestMergeAndInject(t *testing.T) {
	a := New()
	a.Set("x", 1)
	b := New()
	b.Set("x", 2)
	b.Set("y", nil)
	a.Merge(b)
	if v, _ := a.Get("x"); v != 2 {
		t.Errorf("x = %v, want 2", v)
	}
	if !a.Has("y") {
		t.Error("merge should copy absent values too")
	}

	a.InjectValues(map[string]any{"b": 1, "a": 2})
	keys := a.Keys()
	if keys[len(keys)-2] != "a" || keys[len(keys)-1] != "b" {
		t.Errorf("InjectValues order = %v", keys)
	}

	if !a.Remove("x") || a.Remove("x") {
		t.Error("Remove should report presence once")
	}
}

func TestPlain(t *testing.T) {
	inner := NewMap()
	inner.Set("k", "v")
	m := NewMap()
	m.Set("inner", inner)
	m.Set("list", []any{inner})

	p := Plain(m)
	in, ok := p["inner"].(map[string]any)
	if !ok || in["k"] != "v" {
		t.Errorf("inner = %#v", p["inner"])
	}
	list := p["list"].([]any)
	if _, ok := list[0].(map[string]any); !ok {
		t.Errorf("list element = %T", list[0])
	}
}

func TestPlain_NonStringKeys(t *testing.T) {
	m := NewMap()
	m.Set("ratings", map[any]any{1: "good", true: map[any]any{2: "x"}})

	p := Plain(m)
	r, ok := p["ratings"].(map[string]any)
	if !ok {
		t.Fatalf("ratings = %T", p["ratings"])
	}
	if r["1"] != "good" {
		t.Errorf("ratings[1] = %v", r["1"])
	}
	if nested, ok := r["true"].(map[string]any); !ok || nested["2"] != "x" {
		t.Errorf("nested = %#v", r["true"])
	}
}
