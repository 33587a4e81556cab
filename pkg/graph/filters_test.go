package graph

import (
	"strings"
	"testing"
)

func TestGrantFilters_Empty(t *testing.T) {
	where, params := GrantFilters{}.whereClause()
	if where != "" {
		t.Fatalf("expected empty where clause, got %q", where)
	}
	if len(params) != 0 {
		t.Fatalf("expected no params, got %v", params)
	}
}

func TestGrantFilters_Parameterized(t *testing.T) {
	filters := GrantFilters{
		Year:      2021,
		Funder:    "NHMRC",
		Status:    "Active",
		MinAmount: 1000,
		Search:    "cancer'); MATCH (n) DETACH DELETE n; //",
	}

	where, params := filters.whereClause()
	if !strings.HasPrefix(where, "WHERE ") {
		t.Fatalf("expected WHERE prefix, got %q", where)
	}

	// user input must only travel through parameters
	if strings.Contains(where, "DETACH DELETE") {
		t.Fatalf("filter value leaked into cypher text: %q", where)
	}
	if params["search"] != filters.Search {
		t.Fatalf("expected search param preserved, got %v", params["search"])
	}
	if params["year"] != 2021 {
		t.Fatalf("expected year param 2021, got %v", params["year"])
	}

	for _, key := range []string{"year", "funder", "status", "min_amount", "search"} {
		if _, ok := params[key]; !ok {
			t.Fatalf("missing param %q", key)
		}
	}
}

func TestSortExpression_AllowList(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		direction string
		want      string
	}{
		{"known field", "amount", "asc", "g.amount ASC"},
		{"default direction", "title", "", "g.title DESC"},
		{"unknown field falls back", "id); DETACH DELETE n", "desc", "g.start_year DESC"},
		{"empty", "", "", "g.start_year DESC"},
		{"case insensitive", "AMOUNT", "ASC", "g.amount ASC"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sortExpression(tc.sortBy, tc.direction)
			if got != tc.want {
				t.Fatalf("sortExpression(%q, %q) = %q, want %q", tc.sortBy, tc.direction, got, tc.want)
			}
		})
	}
}
