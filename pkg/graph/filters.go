package graph

import (
	"strings"
)

// GrantFilters narrows analytics and listing queries. Zero values mean
// "no filter". Every filter is passed as a query parameter so user input
// never reaches the Cypher text itself.
type GrantFilters struct {
	Year        int     `query:"year"`
	Funder      string  `query:"funder"`
	Area        string  `query:"area"`
	Status      string  `query:"status"`
	Institution string  `query:"institution"`
	MinAmount   float64 `query:"min_amount"`
	MaxAmount   float64 `query:"max_amount"`
	Search      string  `query:"search"`
}

// grantSortFields is the allow-list for GrantsList ordering. Anything else
// falls back to start_year.
var grantSortFields = map[string]string{
	"title":      "g.title",
	"amount":     "g.amount",
	"start_year": "g.start_year",
	"status":     "g.status",
}

// clauses renders the WHERE conditions and parameter map for the filter set.
// The returned conditions assume g:Grant, i:Institution, f:Funder and
// a:ResearchArea bindings where the respective filter is set.
func (f GrantFilters) clauses() ([]string, map[string]any) {
	conditions := []string{}
	params := map[string]any{}

	if f.Year != 0 {
		conditions = append(conditions, "g.start_year = $year")
		params["year"] = f.Year
	}
	if f.Status != "" {
		conditions = append(conditions, "toLower(g.status) = toLower($status)")
		params["status"] = f.Status
	}
	if f.MinAmount > 0 {
		conditions = append(conditions, "g.amount >= $min_amount")
		params["min_amount"] = f.MinAmount
	}
	if f.MaxAmount > 0 {
		conditions = append(conditions, "g.amount <= $max_amount")
		params["max_amount"] = f.MaxAmount
	}
	if f.Funder != "" {
		conditions = append(conditions, "EXISTS { MATCH (fu:Funder)-[:"+RelFunded+"]->(g) WHERE toLower(fu.name) CONTAINS toLower($funder) }")
		params["funder"] = f.Funder
	}
	if f.Institution != "" {
		conditions = append(conditions, "EXISTS { MATCH (g)-[:"+RelHostedBy+"]->(inst:Institution) WHERE toLower(inst.name) CONTAINS toLower($institution) }")
		params["institution"] = f.Institution
	}
	if f.Area != "" {
		conditions = append(conditions, "EXISTS { MATCH (g)-[:"+RelInArea+"]->(ar:ResearchArea) WHERE toLower(ar.name) CONTAINS toLower($area) }")
		params["area"] = f.Area
	}
	if f.Search != "" {
		conditions = append(conditions, "(toLower(g.title) CONTAINS toLower($search) OR toLower(coalesce(g.description, '')) CONTAINS toLower($search))")
		params["search"] = f.Search
	}

	return conditions, params
}

// whereClause joins the filter conditions into a WHERE clause, or returns an
// empty string when no filter is set.
func (f GrantFilters) whereClause() (string, map[string]any) {
	conditions, params := f.clauses()
	if len(conditions) == 0 {
		return "", params
	}
	return "WHERE " + strings.Join(conditions, " AND "), params
}

// sortExpression maps a requested sort field and direction onto the
// allow-list. Unknown fields sort by start_year, and anything other than
// "asc" sorts descending.
func sortExpression(sortBy string, direction string) string {
	field, ok := grantSortFields[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		field = "g.start_year"
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(direction), "asc") {
		dir = "ASC"
	}
	return field + " " + dir
}
