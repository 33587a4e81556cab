package normalize

// Unmapped marks a source column that has no canonical equivalent. Columns
// mapped to it are dropped during row normalization.
const Unmapped = "unmapped"

// SourceField records which feed a row came from. It is added during
// normalization and is not part of the mappable vocabulary.
const SourceField = "source"

// CanonicalFields is the closed vocabulary a source header may map onto.
// The graph loader and the query layer both key off these names.
var CanonicalFields = []string{
	"title",
	"amount",
	"status",
	"description",
	"start_year",
	"end_date",
	"grant_type",
	"funding_body",
	"broad_research_area",
	"field_of_research",
	"application_id",
	"date_announced",
	"pi_name",
	"pi_orcid",
	"institution",
	"investigators",
}

var canonicalSet = func() map[string]bool {
	set := make(map[string]bool, len(CanonicalFields))
	for _, field := range CanonicalFields {
		set[field] = true
	}
	return set
}()

// IsCanonical reports whether field is in the canonical vocabulary.
func IsCanonical(field string) bool {
	return canonicalSet[field]
}

// Record is one normalized grant row keyed by canonical field names.
type Record map[string]string
