package query

import (
	"fmt"
	"regexp"
	"strings"
)

// nameLengthSlack bounds how much longer a stored researcher name may be than
// the matched variant. Without it a short surname matches half the graph.
const nameLengthSlack = 15

var (
	quotedNamePattern = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)

	// unquoted phrasings that carry a researcher name
	namePhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)grants?\s+(?:by|from|of|for)\s+(?:dr\.?\s+|prof\.?\s+|professor\s+)?([a-z][a-z'-]+(?:\s+[a-z][a-z'-]+){0,2})`),
		regexp.MustCompile(`(?i)(?:researcher|investigator)\s+(?:named\s+)?([a-z][a-z'-]+(?:\s+[a-z][a-z'-]+){0,2})`),
		regexp.MustCompile(`(?i)(?:dr\.?|prof\.?|professor)\s+([a-z][a-z'-]+(?:\s+[a-z][a-z'-]+){0,2})`),
	}

	honorificPattern = regexp.MustCompile(`(?i)^(?:a/prof\.?|dr\.?|prof\.?|professor|mr\.?|ms\.?|mrs\.?)\s+`)
)

// extractQuotedName returns the first quoted phrase in the question, or "".
func extractQuotedName(question string) string {
	match := quotedNamePattern.FindStringSubmatch(question)
	if match == nil {
		return ""
	}
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}

// extractPhraseName scans for unquoted "grants by X" style phrasings.
func extractPhraseName(question string) string {
	for _, pattern := range namePhrasePatterns {
		if match := pattern.FindStringSubmatch(question); match != nil {
			return match[1]
		}
	}
	return ""
}

// nameVariants normalizes a raw name mention into the lowercase variants the
// match clause checks against stored names. "King, Glenn" and "Glenn King"
// collapse to the same variant set.
func nameVariants(raw string) []string {
	name := strings.TrimSpace(strings.ToLower(raw))
	name = honorificPattern.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil
	}

	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		first := strings.TrimSpace(name[idx+1:])
		if first != "" && last != "" {
			name = first + " " + last
		} else {
			name = strings.TrimSpace(strings.ReplaceAll(name, ",", " "))
		}
	}

	variants := []string{name}
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		first := strings.Join(parts[:len(parts)-1], " ")
		variants = append(variants, last+", "+first)
	}
	return variants
}

// nameMatchClause renders the researcher match condition for the variants,
// with the length guard on each.
func nameMatchClause(variants []string) string {
	conditions := make([]string, 0, len(variants))
	for _, v := range variants {
		escaped := strings.ReplaceAll(v, `'`, `\'`)
		conditions = append(conditions, fmt.Sprintf(
			"(toLower(r.name) CONTAINS '%s' AND size(r.name) <= %d)",
			escaped, len(v)+nameLengthSlack,
		))
	}
	return strings.Join(conditions, " OR ")
}
