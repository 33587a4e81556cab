package graph

// Relationship types shared by the loader, the schema description and the
// query templates. The graph is a contract consumed by other tools, so every
// statement that names an edge goes through these constants.
const (
	RelPrincipalInvestigator = "PRINCIPAL_INVESTIGATOR"
	RelInvestigator          = "INVESTIGATOR"
	RelHostedBy              = "HOSTED_BY"
	RelAffiliatedWith        = "AFFILIATED_WITH"
	RelFunded                = "FUNDED"
	RelInArea                = "IN_AREA"
	RelHasField              = "HAS_FIELD"
)
