package transport

import (
	"strconv"
	"strings"

	"github.com/rickchristie/travelkit"
)

// lookup walks a decoded JSON payload along path. Integer segments index into lists.
func lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// text returns the value at path rendered as a string, or fallback when it is absent or blank.
func text(v any, fallback string, path ...string) string {
	raw, ok := lookup(v, path...)
	if !ok {
		return fallback
	}
	var s string
	switch val := raw.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	default:
		return fallback
	}
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// items returns the object list under key. A missing key is an empty list; a present key
// holding anything but a list of objects is a malformed payload.
func items(payload map[string]any, key string) ([]map[string]any, error) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(key)
	}
	out := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, malformed(key)
		}
		out = append(out, obj)
	}
	return out, nil
}

func malformed(key string) error {
	return travelkit.NewError(
		travelkit.KindTransportFailure,
		"API request failed: malformed %q list in provider response", key,
	)
}
