package normalize

import (
	"regexp"
	"strings"
)

// aliasRule maps a normalized header substring to a canonical field. Rules
// are checked in order; the first match wins, so more specific aliases come
// first.
type aliasRule struct {
	alias string
	field string
}

// headerAliases covers the header spellings seen across funder exports.
// Matching is by substring on the normalized header, so "Chief Investigator A"
// still hits "chief investigator". Bare "total" is deliberately absent: a
// column like "Total $" carries no mappable name and must stay unmapped.
var headerAliases = []aliasRule{
	{"application id", "application_id"},
	{"app id", "application_id"},
	{"application number", "application_id"},
	{"grant id", "application_id"},
	{"grant number", "application_id"},

	{"orcid", "pi_orcid"},
	{"cia name", "pi_name"},
	{"chief investigator", "pi_name"},
	{"principal investigator", "pi_name"},
	{"lead investigator", "pi_name"},
	{"pi name", "pi_name"},

	{"investigators", "investigators"},
	{"research team", "investigators"},

	{"grant title", "title"},
	{"project title", "title"},
	{"application title", "title"},
	{"title", "title"},

	{"total amount", "amount"},
	{"total funding", "amount"},
	{"funding amount", "amount"},
	{"award amount", "amount"},
	{"total awarded", "amount"},
	{"budget", "amount"},
	{"amount", "amount"},

	{"grant status", "status"},
	{"status", "status"},

	{"plain description", "description"},
	{"description", "description"},
	{"grant summary", "description"},
	{"abstract", "description"},

	{"commencement year", "start_year"},
	{"start year", "start_year"},
	{"funding commenced", "start_year"},
	{"year", "start_year"},

	{"completion year", "end_date"},
	{"end date", "end_date"},
	{"funding ceased", "end_date"},

	{"grant type", "grant_type"},
	{"funding scheme", "grant_type"},
	{"scheme", "grant_type"},

	{"funding body", "funding_body"},
	{"funding agency", "funding_body"},
	{"funder", "funding_body"},

	{"broad research area", "broad_research_area"},
	{"research area", "broad_research_area"},

	{"field of research", "field_of_research"},
	{"for division", "field_of_research"},
	{"for category", "field_of_research"},

	{"date announced", "date_announced"},
	{"announcement date", "date_announced"},

	{"administering institution", "institution"},
	{"admin institution", "institution"},
	{"institution", "institution"},
	{"organisation", "institution"},
	{"organization", "institution"},
	{"university", "institution"},
}

var headerCleanPattern = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeHeader lowercases a header and collapses punctuation to single
// spaces, so "App_ID" and "App ID" compare equal.
func normalizeHeader(header string) string {
	lower := strings.ToLower(header)
	cleaned := headerCleanPattern.ReplaceAllString(lower, " ")
	return strings.TrimSpace(cleaned)
}

// FallbackMapHeaders maps each header to a canonical field using the alias
// table, or to Unmapped. It is deterministic and used whenever the model
// mapper is unavailable or returns an invalid field.
func FallbackMapHeaders(headers []string) map[string]string {
	mapping := make(map[string]string, len(headers))
	for _, header := range headers {
		mapping[header] = fallbackMapHeader(header)
	}
	return mapping
}

func fallbackMapHeader(header string) string {
	normalized := normalizeHeader(header)
	if normalized == "" {
		return Unmapped
	}
	if IsCanonical(strings.ReplaceAll(normalized, " ", "_")) {
		return strings.ReplaceAll(normalized, " ", "_")
	}
	for _, rule := range headerAliases {
		if strings.Contains(normalized, rule.alias) {
			return rule.field
		}
	}
	return Unmapped
}
