package graph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// loadBatchSize controls how many grants go into a single UNWIND statement.
const loadBatchSize = 2000

// GrantRecord is one normalized grant row keyed by canonical field names.
type GrantRecord map[string]string

// Clear removes every node and relationship. Used before a full reload.
func (s *Store) Clear(ctx context.Context) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	})
	if err != nil {
		return fmt.Errorf("failed to clear graph: %w", err)
	}
	return nil
}

// LoadGrants bulk-loads normalized grant records. Dimension nodes are merged
// first, then grants, then relationships, each in batches so a large corpus
// does not blow up a single transaction.
func (s *Store) LoadGrants(ctx context.Context, records []GrantRecord) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, loadRow(rec))
	}

	statements := []string{
		`UNWIND $rows AS row
		 WITH row WHERE row.pi_name <> ''
		 MERGE (r:Researcher {name: row.pi_name})
		 SET r.orcid_id = CASE WHEN row.pi_orcid <> '' THEN row.pi_orcid ELSE r.orcid_id END`,

		`UNWIND $rows AS row
		 WITH row WHERE row.institution <> ''
		 MERGE (i:Institution {name: row.institution})`,

		`UNWIND $rows AS row
		 WITH row WHERE row.funding_body <> ''
		 MERGE (f:Funder {name: row.funding_body})`,

		`UNWIND $rows AS row
		 WITH row WHERE row.broad_research_area <> ''
		 MERGE (a:ResearchArea {name: row.broad_research_area})`,

		`UNWIND $rows AS row
		 WITH row WHERE row.field_of_research <> ''
		 MERGE (fo:FieldOfResearch {name: row.field_of_research})`,

		`UNWIND $rows AS row
		 MERGE (g:Grant {id: row.id})
		 SET g.title = row.title,
		     g.amount = row.amount,
		     g.status = row.status,
		     g.description = row.description,
		     g.start_year = row.start_year,
		     g.end_date = row.end_date,
		     g.grant_type = row.grant_type,
		     g.date_announced = row.date_announced,
		     g.application_id = row.application_id,
		     g.source = row.source`,

		`UNWIND $rows AS row
		 WITH row WHERE row.pi_name <> ''
		 MATCH (g:Grant {id: row.id})
		 MATCH (r:Researcher {name: row.pi_name})
		 MERGE (r)-[:` + RelPrincipalInvestigator + `]->(g)`,

		`UNWIND $rows AS row
		 WITH row WHERE row.institution <> ''
		 MATCH (g:Grant {id: row.id})
		 MATCH (i:Institution {name: row.institution})
		 MERGE (g)-[:` + RelHostedBy + `]->(i)`,

		`UNWIND $rows AS row
		 WITH row WHERE row.pi_name <> '' AND row.institution <> ''
		 MATCH (r:Researcher {name: row.pi_name})
		 MATCH (i:Institution {name: row.institution})
		 MERGE (r)-[:` + RelAffiliatedWith + `]->(i)`,

		`UNWIND $rows AS row
		 WITH row WHERE row.funding_body <> ''
		 MATCH (g:Grant {id: row.id})
		 MATCH (f:Funder {name: row.funding_body})
		 MERGE (f)-[:` + RelFunded + `]->(g)`,

		`UNWIND $rows AS row
		 WITH row WHERE row.broad_research_area <> ''
		 MATCH (g:Grant {id: row.id})
		 MATCH (a:ResearchArea {name: row.broad_research_area})
		 MERGE (g)-[:` + RelInArea + `]->(a)`,

		`UNWIND $rows AS row
		 WITH row WHERE row.field_of_research <> ''
		 MATCH (g:Grant {id: row.id})
		 MATCH (fo:FieldOfResearch {name: row.field_of_research})
		 MERGE (g)-[:` + RelHasField + `]->(fo)`,

		`UNWIND $rows AS row
		 UNWIND row.investigators AS inv
		 WITH row, trim(inv) AS inv WHERE inv <> ''
		 MATCH (g:Grant {id: row.id})
		 MERGE (r:Researcher {name: inv})
		 MERGE (r)-[:` + RelInvestigator + `]->(g)`,
	}

	for start := 0; start < len(rows); start += loadBatchSize {
		end := start + loadBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
			for _, stmt := range statements {
				if _, err := tx.Run(ctx, stmt, map[string]any{"rows": batch}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			return fmt.Errorf("failed to load batch %d-%d: %w", start, end, err)
		}

		logger.Info("[Graph] Loaded batch", "from", start, "to", end, "total", len(rows))
	}

	return nil
}

// loadRow converts a normalized record into UNWIND parameters, parsing the
// numeric fields and assigning an id when the source had none.
func loadRow(rec GrantRecord) map[string]any {
	id := strings.TrimSpace(rec["application_id"])
	if id == "" {
		id, _ = gonanoid.New()
	}

	investigators := []any{}
	for _, inv := range strings.Split(rec["investigators"], ";") {
		if trimmed := strings.TrimSpace(inv); trimmed != "" {
			investigators = append(investigators, trimmed)
		}
	}

	return map[string]any{
		"id":                  id,
		"title":               strings.TrimSpace(rec["title"]),
		"amount":              parseLoadAmount(rec["amount"]),
		"status":              strings.TrimSpace(rec["status"]),
		"description":         strings.TrimSpace(rec["description"]),
		"start_year":          parseLoadYear(rec["start_year"]),
		"end_date":            strings.TrimSpace(rec["end_date"]),
		"grant_type":          strings.TrimSpace(rec["grant_type"]),
		"date_announced":      strings.TrimSpace(rec["date_announced"]),
		"application_id":      strings.TrimSpace(rec["application_id"]),
		"source":              strings.TrimSpace(rec["source"]),
		"pi_name":             strings.TrimSpace(rec["pi_name"]),
		"pi_orcid":            strings.TrimSpace(rec["pi_orcid"]),
		"institution":         strings.TrimSpace(rec["institution"]),
		"funding_body":        strings.TrimSpace(rec["funding_body"]),
		"broad_research_area": strings.TrimSpace(rec["broad_research_area"]),
		"field_of_research":   strings.TrimSpace(rec["field_of_research"]),
		"investigators":       investigators,
	}
}

func parseLoadAmount(raw string) any {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return nil
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return nil
	}
	return amount
}

func parseLoadYear(raw string) any {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	// tolerate "2021.0" style exports
	if idx := strings.Index(cleaned, "."); idx > 0 {
		cleaned = cleaned[:idx]
	}
	year, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return year
}
