package query

import (
	"math"
)

// Sanitize replaces non-JSON-encodable float values (NaN, +Inf, -Inf) with
// nil, recursing through maps and slices. Applying it twice is a no-op.
func Sanitize(value any) any {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return value
	}
}

// SanitizeRows sanitizes each row in place-equivalent fashion, returning new
// maps.
func SanitizeRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = Sanitize(row).(map[string]any)
	}
	return out
}
