package attrs

import (
	"fmt"
	"sort"
)

// Plain converts an ordered map, recursively, into builtin maps and slices.
// Template engines that resolve names by reflection need this form.
func Plain(m *Map) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = plainValue(pair.Value)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return Plain(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plainValue(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

// FromValues builds an ordered map from a plain map with keys in sorted order.
func FromValues(values map[string]any) *Map {
	m := NewMap()
	for _, k := range sortedKeys(values) {
		m.Set(k, values[k])
	}
	return m
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
