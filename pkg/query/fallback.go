package query

import (
	"strings"

	"github.com/ossgrants/grantgraph/backend/pkg/graph"
)

// FallbackCypher deterministically maps a natural-language question to a safe
// Cypher statement. It never fails: questions that match no rule get the
// recent-grants query. The same question always yields the same statement.
func FallbackCypher(question string) string {
	if name := extractQuotedName(question); name != "" {
		if q := researcherQuery(name); q != "" {
			return q
		}
	}
	if name := extractPhraseName(question); name != "" {
		if q := researcherQuery(name); q != "" {
			return q
		}
	}

	lower := strings.ToLower(question)

	switch {
	case containsAny(lower, "cancer", "oncolog", "tumour", "tumor"):
		return "MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "]->(g:Grant) " +
			"OPTIONAL MATCH (g)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
			"OPTIONAL MATCH (g)-[:" + graph.RelInArea + "]->(a:ResearchArea) " +
			"WITH g, r, i WHERE toLower(g.title) CONTAINS 'cancer' " +
			"OR toLower(coalesce(g.description, '')) CONTAINS 'cancer' " +
			"OR EXISTS { MATCH (g)-[:" + graph.RelInArea + "]->(ca:ResearchArea) WHERE toLower(ca.name) CONTAINS 'cancer' } " +
			grantProjection + " " + boundedSuffix

	case containsAny(lower, "collaborat", "co-invest", "work together", "joint"):
		return "MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "]->(g:Grant)<-[:" + graph.RelInvestigator + "]-(other:Researcher) " +
			"OPTIONAL MATCH (g)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
			"WITH g, r, i, collect(DISTINCT other.name) AS collaborators " +
			"WHERE size(collaborators) > 0 " +
			grantProjection + ", collaborators " + boundedSuffix

	case containsAny(lower, "institution", "university", "institute", "administer"):
		return "MATCH (g:Grant)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
			"OPTIONAL MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "]->(g) " +
			grantProjection + " " + boundedSuffix

	case containsAny(lower, "largest", "biggest", "most fund", "highest fund", "expensive", "amount", "funding"):
		return "MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "]->(g:Grant) " +
			"OPTIONAL MATCH (g)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
			"WITH g, r, i WHERE g.amount IS NOT NULL " +
			grantProjection + " " + boundedSuffix

	case containsAny(lower, "active", "ongoing", "current"):
		return "MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "]->(g:Grant) " +
			"OPTIONAL MATCH (g)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
			"WITH g, r, i WHERE toLower(coalesce(g.status, '')) CONTAINS 'active' " +
			grantProjection + " " + boundedSuffix

	default:
		return recentGrantsQuery()
	}
}

// researcherQuery builds the name-variant match for a researcher mention.
func researcherQuery(rawName string) string {
	variants := nameVariants(rawName)
	if len(variants) == 0 {
		return ""
	}
	return "MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "|" + graph.RelInvestigator + "]->(g:Grant) " +
		"WHERE " + nameMatchClause(variants) + " " +
		"OPTIONAL MATCH (g)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
		grantProjection + " " + boundedSuffix
}

// recentGrantsQuery is the terminal fallback.
func recentGrantsQuery() string {
	return "MATCH (g:Grant) " +
		"OPTIONAL MATCH (r:Researcher)-[:" + graph.RelPrincipalInvestigator + "]->(g) " +
		"OPTIONAL MATCH (g)-[:" + graph.RelHostedBy + "]->(i:Institution) " +
		grantProjection + " " + boundedSuffix
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
