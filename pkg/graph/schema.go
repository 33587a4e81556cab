package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

const maxSchemaProperties = 20

// schemaConstraints are applied best-effort before a bulk load. Failures are
// logged and skipped so older Neo4j versions without a given syntax still work.
var schemaConstraints = []string{
	"CREATE CONSTRAINT grant_id IF NOT EXISTS FOR (g:Grant) REQUIRE g.id IS UNIQUE",
	"CREATE CONSTRAINT researcher_name IF NOT EXISTS FOR (r:Researcher) REQUIRE r.name IS UNIQUE",
	"CREATE CONSTRAINT institution_name IF NOT EXISTS FOR (i:Institution) REQUIRE i.name IS UNIQUE",
	"CREATE CONSTRAINT funder_name IF NOT EXISTS FOR (f:Funder) REQUIRE f.name IS UNIQUE",
	"CREATE CONSTRAINT area_name IF NOT EXISTS FOR (a:ResearchArea) REQUIRE a.name IS UNIQUE",
	"CREATE CONSTRAINT field_name IF NOT EXISTS FOR (fo:FieldOfResearch) REQUIRE fo.name IS UNIQUE",
	"CREATE INDEX grant_start_year IF NOT EXISTS FOR (g:Grant) ON (g.start_year)",
	"CREATE INDEX grant_title IF NOT EXISTS FOR (g:Grant) ON (g.title)",
}

// EnsureSchema creates uniqueness constraints and indexes used by the bulk
// loader and the query templates. Each statement is applied independently.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	for _, stmt := range schemaConstraints {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			logger.Warn("[Graph] Schema statement failed, skipping", "statement", stmt, "err", err)
		}
	}
	return nil
}

// SchemaText introspects the live database and renders a compact description
// used to ground Cypher generation: labels, relationship types, the first
// properties, and the canonical traversal patterns.
func (s *Store) SchemaText(ctx context.Context) (string, error) {
	labels, err := s.collectStrings(ctx, "CALL db.labels() YIELD label RETURN label", "label")
	if err != nil {
		return "", fmt.Errorf("failed to read labels: %w", err)
	}

	relTypes, err := s.collectStrings(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", "relationshipType")
	if err != nil {
		return "", fmt.Errorf("failed to read relationship types: %w", err)
	}

	props, err := s.collectStrings(ctx, "CALL db.propertyKeys() YIELD propertyKey RETURN propertyKey", "propertyKey")
	if err != nil {
		return "", fmt.Errorf("failed to read property keys: %w", err)
	}
	if len(props) > maxSchemaProperties {
		props = props[:maxSchemaProperties]
	}

	var b strings.Builder
	b.WriteString("Node labels: " + strings.Join(labels, ", ") + "\n")
	b.WriteString("Relationship types: " + strings.Join(relTypes, ", ") + "\n")
	b.WriteString("Properties: " + strings.Join(props, ", ") + "\n")
	b.WriteString("Common patterns:\n")
	b.WriteString("  (r:Researcher)-[:" + RelPrincipalInvestigator + "]->(g:Grant)\n")
	b.WriteString("  (r:Researcher)-[:" + RelInvestigator + "]->(g:Grant)\n")
	b.WriteString("  (g:Grant)-[:" + RelHostedBy + "]->(i:Institution)\n")
	b.WriteString("  (f:Funder)-[:" + RelFunded + "]->(g:Grant)\n")
	b.WriteString("  (g:Grant)-[:" + RelInArea + "]->(a:ResearchArea)\n")
	b.WriteString("  (g:Grant)-[:" + RelHasField + "]->(fo:FieldOfResearch)\n")

	return b.String(), nil
}

func (s *Store) collectStrings(ctx context.Context, cypher string, key string) ([]string, error) {
	rows, err := s.Execute(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[key].(string); ok {
			values = append(values, v)
		}
	}
	return values, nil
}
