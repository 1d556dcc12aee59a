package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// normalize maps v onto the json value space (map[string]any, []any, float64, string, bool, nil)
// so values written by Go code compare equal to values read back from storage.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string, bool, float64:
		return t, nil
	case ArrayUnion:
		return normalize([]any(t))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if u, ok := v.(ArrayUnion); ok {
			out[k] = u
			continue
		}
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// merge applies partial on top of base. ArrayUnion fields append unique elements; every other
// field replaces the stored value.
func merge(base, partial map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(base)+len(partial))
	for k, v := range base {
		out[k] = v
	}
	norm, err := normalizeMap(partial)
	if err != nil {
		return nil, err
	}
	for k, v := range norm {
		u, ok := v.(ArrayUnion)
		if !ok {
			out[k] = v
			continue
		}
		existing, _ := out[k].([]any)
		merged := make([]any, 0, len(existing)+len(u))
		merged = append(merged, existing...)
		for _, raw := range u {
			el, err := normalize(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			if !containsValue(merged, el) {
				merged = append(merged, el)
			}
		}
		out[k] = merged
	}
	return out, nil
}

func containsValue(list []any, v any) bool {
	for _, el := range list {
		if reflect.DeepEqual(el, v) {
			return true
		}
	}
	return false
}

func lookup(data map[string]any, field string) (any, bool) {
	var cur any = data
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func matches(data map[string]any, filters []Filter) bool {
	for _, f := range filters {
		got, ok := lookup(data, f.Field)
		if !ok {
			return false
		}
		want, err := normalize(f.Value)
		if err != nil || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// compareValues orders json values: nil first, then numbers, timestamps and strings in their
// natural order. RFC 3339 strings compare as instants.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aErr := time.Parse(time.RFC3339Nano, av)
			bt, bErr := time.Parse(time.RFC3339Nano, bv)
			if aErr == nil && bErr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
