package graph

import (
	"context"
)

// GrantsPage is one page of the grants listing.
type GrantsPage struct {
	Grants   []map[string]any `json:"grants"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// GrantsList returns a paginated, filtered grant listing. Sort fields are
// matched against an allow-list; unknown fields order by start year.
func (s *Store) GrantsList(
	ctx context.Context,
	filters GrantFilters,
	page int,
	pageSize int,
	sortBy string,
	sortDir string,
) (GrantsPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	where, params := filters.whereClause()

	countRows, err := s.run(ctx, "MATCH (g:Grant) "+where+" RETURN count(g) AS total", params)
	if err != nil {
		return GrantsPage{}, err
	}
	var total int64
	if len(countRows) > 0 {
		total = asInt64(countRows[0]["total"])
	}

	params["skip"] = (page - 1) * pageSize
	params["limit"] = pageSize

	cypher := `
		MATCH (g:Grant) ` + where + `
		OPTIONAL MATCH (r:Researcher)-[:` + RelPrincipalInvestigator + `]->(g)
		OPTIONAL MATCH (g)-[:` + RelHostedBy + `]->(i:Institution)
		OPTIONAL MATCH (f:Funder)-[:` + RelFunded + `]->(g)
		RETURN g.id AS id, g.title AS title, g.amount AS amount,
		       g.status AS status, g.start_year AS start_year,
		       g.grant_type AS grant_type, g.source AS source,
		       r.name AS pi_name, i.name AS institution, f.name AS funding_body
		ORDER BY ` + sortExpression(sortBy, sortDir) + `
		SKIP $skip LIMIT $limit
	`
	rows, err := s.run(ctx, cypher, params)
	if err != nil {
		return GrantsPage{}, err
	}

	return GrantsPage{
		Grants:   rows,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GrantByID returns one grant with its researcher, institution, funder and
// area context, or nil when the id is unknown.
func (s *Store) GrantByID(ctx context.Context, id string) (map[string]any, error) {
	rows, err := s.run(ctx, `
		MATCH (g:Grant {id: $id})
		OPTIONAL MATCH (r:Researcher)-[:` + RelPrincipalInvestigator + `]->(g)
		OPTIONAL MATCH (g)-[:` + RelHostedBy + `]->(i:Institution)
		OPTIONAL MATCH (f:Funder)-[:` + RelFunded + `]->(g)
		OPTIONAL MATCH (g)-[:` + RelInArea + `]->(a:ResearchArea)
		OPTIONAL MATCH (contrib:Researcher)-[:` + RelInvestigator + `]->(g)
		RETURN g AS grant, r.name AS pi_name, i.name AS institution,
		       f.name AS funding_body, a.name AS broad_research_area,
		       collect(DISTINCT contrib.name) AS investigators
	`, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FilterOptions returns the distinct values the frontend offers as filters.
func (s *Store) FilterOptions(ctx context.Context) (map[string][]string, error) {
	options := map[string][]string{}

	queries := map[string]string{
		"years":    "MATCH (g:Grant) WHERE g.start_year IS NOT NULL RETURN DISTINCT toString(g.start_year) AS value ORDER BY value DESC",
		"statuses": "MATCH (g:Grant) WHERE g.status IS NOT NULL RETURN DISTINCT g.status AS value ORDER BY value",
		"funders":  "MATCH (f:Funder) RETURN DISTINCT f.name AS value ORDER BY value",
		"areas":    "MATCH (a:ResearchArea) RETURN DISTINCT a.name AS value ORDER BY value",
	}

	for key, cypher := range queries {
		rows, err := s.run(ctx, cypher, nil)
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if v, ok := row["value"].(string); ok && v != "" {
				values = append(values, v)
			}
		}
		options[key] = values
	}

	return options, nil
}
