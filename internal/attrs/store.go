// Package attrs implements the ordered key/value store backing every feed record.
//
// A Store keeps insertion order so exports are deterministic. A Store may
// declare a schema of protected keys: those keys are pre-seeded with an absent
// value in declaration order, so the public field set of a record is known up
// front while arbitrary extension keys are still accepted.
package attrs

import (
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/markdownfeeds/internal/apperr"
)

// Map is the ordered mapping produced by Dump and used for front matter.
type Map = orderedmap.OrderedMap[string, any]

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// Dumper is implemented by values that export themselves as a Map.
type Dumper interface {
	Dump() *Map
}

// KeyError is returned by Get when the key is not present.
type KeyError struct {
	Key       string
	Available []string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("attrs: no value with key %q, available keys are [%s]",
		e.Key, strings.Join(e.Available, ", "))
}

// Is reports whether target is apperr.ErrNotFound.
func (e *KeyError) Is(target error) bool {
	return target == apperr.ErrNotFound
}

// Store is an ordered attribute container.
type Store struct {
	values    *Map
	protected map[string]struct{}
}

// New creates a store. Any protected keys are seeded with a nil value.
func New(protected ...string) *Store {
	s := &Store{
		values:    NewMap(),
		protected: make(map[string]struct{}, len(protected)),
	}
	for _, k := range protected {
		s.protected[k] = struct{}{}
		s.values.Set(k, nil)
	}
	return s
}

// IsProtected reports whether key is part of the declared schema.
func (s *Store) IsProtected(key string) bool {
	_, ok := s.protected[key]
	return ok
}

// Set stores value under key. Existing keys keep their position.
func (s *Store) Set(key string, value any) {
	s.values.Set(key, value)
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, error) {
	v, ok := s.values.Get(key)
	if !ok {
		return nil, &KeyError{Key: key, Available: s.Keys()}
	}
	return v, nil
}

// Has reports whether key exists, regardless of its value.
func (s *Store) Has(key string) bool {
	_, ok := s.values.Get(key)
	return ok
}

// HasValue reports whether key exists and holds a non-nil value.
func (s *Store) HasValue(key string) bool {
	v, ok := s.values.Get(key)
	return ok && !IsAbsent(v)
}

// Remove deletes key and reports whether it was present.
func (s *Store) Remove(key string) bool {
	_, ok := s.values.Delete(key)
	return ok
}

// Rename moves the value of oldKey to newKey. The renamed entry is appended.
func (s *Store) Rename(oldKey, newKey string) error {
	v, err := s.Get(oldKey)
	if err != nil {
		return err
	}
	s.values.Delete(oldKey)
	s.values.Set(newKey, v)
	return nil
}

// Inject sets every entry of m, in m's order.
func (s *Store) Inject(m *Map) {
	if m == nil {
		return
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		s.values.Set(pair.Key, pair.Value)
	}
}

// InjectValues sets every entry of a plain map. Keys are applied in sorted
// order so the resulting store is deterministic.
func (s *Store) InjectValues(m map[string]any) {
	for _, k := range sortedKeys(m) {
		s.values.Set(k, m[k])
	}
}

// Merge copies every entry of other into s, absent values included.
func (s *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	s.Inject(other.values)
}

// Keys returns the stored keys in insertion order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.values.Len())
	for pair := s.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return s.values.Len()
}

// Clone returns a shallow copy of the store, protected keys included.
func (s *Store) Clone() *Store {
	c := &Store{
		values:    NewMap(),
		protected: s.protected,
	}
	c.Inject(s.values)
	return c
}

// Dump exports the store. Absent values are omitted and nested dumpers are
// dumped recursively.
func (s *Store) Dump() *Map {
	out := NewMap()
	for pair := s.values.Oldest(); pair != nil; pair = pair.Next() {
		v := DumpValue(pair.Value)
		if IsAbsent(v) {
			continue
		}
		out.Set(pair.Key, v)
	}
	return out
}

// DumpValue prepares a single value for export.
func DumpValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Dumper:
		if IsAbsent(t) {
			return nil
		}
		return t.Dump()
	case []Dumper:
		out := make([]any, 0, len(t))
		for _, d := range t {
			out = append(out, DumpValue(d))
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			out = append(out, DumpValue(e))
		}
		return out
	default:
		return v
	}
}

// IsAbsent reports whether v is nil or a typed nil.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
