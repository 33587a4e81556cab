package query

// FlattenRow lifts one level of nesting: a map value under key "g" with
// sub-key "title" becomes "g_title". Deeper nesting is left as-is.
func FlattenRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for key, value := range row {
		nested, ok := value.(map[string]any)
		if !ok {
			out[key] = value
			continue
		}
		for subKey, subValue := range nested {
			out[key+"_"+subKey] = subValue
		}
	}
	return out
}
