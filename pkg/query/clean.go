package query

import (
	"regexp"
	"strings"
)

var (
	thinkTagPattern   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFencePattern  = regexp.MustCompile("(?i)```(?:cypher)?")
	whitespacePattern = regexp.MustCompile(`\s+`)
	limitPattern      = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\b`)
	orderByPattern    = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
)

// destructiveKeywords reject model output that would mutate the graph. The
// query pipeline only ever reads.
var destructiveKeywords = []string{
	"DELETE",
	"DROP",
	"CREATE ",
	"DETACH",
	"REMOVE",
	"MERGE",
	"SET ",
}

// CleanModelOutput strips reasoning tags and code fences from raw model text
// and collapses all whitespace runs to single spaces.
func CleanModelOutput(raw string) string {
	cleaned := thinkTagPattern.ReplaceAllString(raw, "")
	cleaned = codeFencePattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// IsDestructive reports whether the statement contains a write or schema
// keyword.
func IsDestructive(cypher string) bool {
	upper := strings.ToUpper(cypher)
	for _, keyword := range destructiveKeywords {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// EnsureBounded guarantees the statement carries a row cap. Statements
// without a LIMIT get the shared recency bound appended; statements with a
// larger LIMIT are clamped to the cap.
func EnsureBounded(cypher string) string {
	match := limitPattern.FindStringSubmatch(cypher)
	if match == nil {
		if orderByPattern.MatchString(cypher) {
			return cypher + " LIMIT 20"
		}
		if strings.Contains(cypher, "(g:Grant") {
			return cypher + " " + boundedSuffix
		}
		return cypher + " LIMIT 20"
	}

	if len(match[1]) > 2 { // anything above 99 is certainly over the cap
		return limitPattern.ReplaceAllString(cypher, "LIMIT 20")
	}
	var n int
	for _, d := range match[1] {
		n = n*10 + int(d-'0')
	}
	if n > rowLimit {
		return limitPattern.ReplaceAllString(cypher, "LIMIT 20")
	}
	return cypher
}
