package query

// Canonical property names on Grant nodes. The translation prompt and the
// fallback templates share this vocabulary so both paths return rows with the
// same keys.
const (
	PropTitle         = "title"
	PropAmount        = "amount"
	PropStatus        = "status"
	PropDescription   = "description"
	PropStartYear     = "start_year"
	PropEndDate       = "end_date"
	PropGrantType     = "grant_type"
	PropDateAnnounced = "date_announced"
	PropApplicationID = "application_id"
	PropSource        = "source"
)

// GrantProperties lists the queryable Grant node properties in the order they
// are presented to the model.
var GrantProperties = []string{
	PropTitle,
	PropAmount,
	PropStatus,
	PropDescription,
	PropStartYear,
	PropEndDate,
	PropGrantType,
	PropDateAnnounced,
	PropApplicationID,
	PropSource,
}

// ResearcherProperties lists the queryable Researcher node properties.
var ResearcherProperties = []string{"name", "orcid_id"}

// grantProjection is the shared RETURN clause of the fallback templates. Rows
// produced by any template carry the same keys.
const grantProjection = "RETURN g.title AS title, g.amount AS amount, g.status AS status, " +
	"g.start_year AS start_year, g.grant_type AS grant_type, " +
	"r.name AS researcher, i.name AS institution"

// boundedSuffix closes every fallback template: recency ordering plus the row
// cap. The translator appends the same bound to model output missing a LIMIT.
const boundedSuffix = "ORDER BY g.start_year DESC LIMIT 20"

// rowLimit caps rows returned to the synthesis stage.
const rowLimit = 20
