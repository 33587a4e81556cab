package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// convertValue flattens driver types into plain Go values. Nodes and
// relationships collapse to their property maps, temporal types render as
// strings, and collections convert recursively.
func convertValue(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		props := make(map[string]any, len(v.Props))
		for k, pv := range v.Props {
			props[k] = convertValue(pv)
		}
		return props
	case dbtype.Relationship:
		props := make(map[string]any, len(v.Props))
		for k, pv := range v.Props {
			props[k] = convertValue(pv)
		}
		return props
	case dbtype.Path:
		nodes := make([]any, 0, len(v.Nodes))
		for _, n := range v.Nodes {
			nodes = append(nodes, convertValue(n))
		}
		return nodes
	case dbtype.Date:
		return v.String()
	case dbtype.LocalDateTime:
		return v.String()
	case dbtype.Time:
		return v.String()
	case []any:
		converted := make([]any, len(v))
		for i, item := range v {
			converted[i] = convertValue(item)
		}
		return converted
	case map[string]any:
		converted := make(map[string]any, len(v))
		for k, item := range v {
			converted[k] = convertValue(item)
		}
		return converted
	default:
		return value
	}
}
