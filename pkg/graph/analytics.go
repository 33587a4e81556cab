package graph

import (
	"context"
)

// Stats summarizes the loaded corpus for the dashboard.
type Stats struct {
	TotalGrants       int64   `json:"total_grants"`
	TotalFunding      float64 `json:"total_funding"`
	AvgFunding        float64 `json:"avg_funding"`
	TotalResearchers  int64   `json:"total_researchers"`
	TotalInstitutions int64   `json:"total_institutions"`
}

// Stats aggregates grant counts and funding totals under the given filters.
func (s *Store) Stats(ctx context.Context, filters GrantFilters) (Stats, error) {
	where, params := filters.whereClause()

	cypher := `
		MATCH (g:Grant) ` + where + `
		RETURN count(g) AS total_grants,
		       coalesce(sum(g.amount), 0.0) AS total_funding,
		       coalesce(avg(g.amount), 0.0) AS avg_funding
	`
	rows, err := s.run(ctx, cypher, params)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{}
	if len(rows) > 0 {
		stats.TotalGrants = asInt64(rows[0]["total_grants"])
		stats.TotalFunding = asFloat64(rows[0]["total_funding"])
		stats.AvgFunding = asFloat64(rows[0]["avg_funding"])
	}

	counts, err := s.run(ctx, `
		MATCH (r:Researcher) WITH count(r) AS researchers
		MATCH (i:Institution)
		RETURN researchers, count(i) AS institutions
	`, nil)
	if err != nil {
		return stats, err
	}
	if len(counts) > 0 {
		stats.TotalResearchers = asInt64(counts[0]["researchers"])
		stats.TotalInstitutions = asInt64(counts[0]["institutions"])
	}

	return stats, nil
}

// TopInstitutions returns institutions ranked by total grant funding.
func (s *Store) TopInstitutions(ctx context.Context, filters GrantFilters, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	where, params := filters.whereClause()
	params["limit"] = limit

	cypher := `
		MATCH (g:Grant)-[:` + RelHostedBy + `]->(i:Institution) ` + where + `
		RETURN i.name AS institution,
		       count(g) AS grant_count,
		       coalesce(sum(g.amount), 0.0) AS total_funding
		ORDER BY total_funding DESC
		LIMIT $limit
	`
	return s.run(ctx, cypher, params)
}

// FundingTrends returns per-year grant counts and funding totals.
func (s *Store) FundingTrends(ctx context.Context, filters GrantFilters) ([]map[string]any, error) {
	where, params := filters.whereClause()

	cypher := `
		MATCH (g:Grant) ` + where + `
		WITH g WHERE g.start_year IS NOT NULL
		RETURN g.start_year AS year,
		       count(g) AS grant_count,
		       coalesce(sum(g.amount), 0.0) AS total_funding
		ORDER BY year ASC
	`
	return s.run(ctx, cypher, params)
}

// AreaDistribution returns grant counts per broad research area.
func (s *Store) AreaDistribution(ctx context.Context, filters GrantFilters) ([]map[string]any, error) {
	where, params := filters.whereClause()

	cypher := `
		MATCH (g:Grant)-[:` + RelInArea + `]->(a:ResearchArea) ` + where + `
		RETURN a.name AS area,
		       count(g) AS grant_count,
		       coalesce(sum(g.amount), 0.0) AS total_funding
		ORDER BY grant_count DESC
	`
	return s.run(ctx, cypher, params)
}

// CollaborationNetwork returns researchers who share grants with the named
// researcher, with the shared grant counts.
func (s *Store) CollaborationNetwork(ctx context.Context, name string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 25
	}

	cypher := `
		MATCH (r:Researcher)-[:` + RelPrincipalInvestigator + `|` + RelInvestigator + `]->(g:Grant)<-[:` + RelPrincipalInvestigator + `|` + RelInvestigator + `]-(other:Researcher)
		WHERE toLower(r.name) CONTAINS toLower($name) AND r <> other
		RETURN other.name AS collaborator,
		       count(DISTINCT g) AS shared_grants,
		       collect(DISTINCT g.title)[..5] AS sample_titles
		ORDER BY shared_grants DESC
		LIMIT $limit
	`
	return s.run(ctx, cypher, map[string]any{"name": name, "limit": limit})
}

// ResearcherSuggestions returns researcher names matching a partial string,
// for typeahead.
func (s *Store) ResearcherSuggestions(ctx context.Context, partial string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.run(ctx, `
		MATCH (r:Researcher)
		WHERE toLower(r.name) CONTAINS toLower($partial)
		RETURN r.name AS name
		ORDER BY r.name ASC
		LIMIT $limit
	`, map[string]any{"partial": partial, "limit": limit})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
