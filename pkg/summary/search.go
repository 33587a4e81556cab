package summary

import (
	"regexp"
	"strings"
)

var quotedPhrasePattern = regexp.MustCompile(`'([^']+)'|"([^"]+)"`)

// searchStopwords are dropped when shaping title terms into a web query.
var searchStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "for": true, "and": true,
	"in": true, "on": true, "to": true, "with": true, "by": true, "from": true,
	"into": true, "using": true, "via": true, "study": true, "studies": true,
}

const maxTitleTerms = 4

// BuildSearchQuery shapes a web query from the question and result rows. A
// quoted researcher name makes the query researcher-centric; otherwise the
// first grant title contributes its distinctive terms; failing both, the raw
// question is used.
func BuildSearchQuery(question string, rows []map[string]any) string {
	researcher := ""
	if match := quotedPhrasePattern.FindStringSubmatch(question); match != nil {
		if match[1] != "" {
			researcher = match[1]
		} else {
			researcher = match[2]
		}
	}
	if researcher == "" && len(rows) > 0 {
		researcher = rowString(rows[0], researcherKeys...)
	}

	terms := []string{}
	if len(rows) > 0 {
		title := rowString(rows[0], titleKeys...)
		for _, word := range strings.Fields(title) {
			cleaned := strings.Trim(strings.ToLower(word), ".,;:()[]")
			if len(cleaned) < 3 || searchStopwords[cleaned] {
				continue
			}
			terms = append(terms, cleaned)
			if len(terms) == maxTitleTerms {
				break
			}
		}
	}

	switch {
	case researcher != "" && len(terms) > 0:
		return `"` + researcher + `" ` + strings.Join(terms, " ") + " research grant"
	case researcher != "":
		return `"` + researcher + `" research grants`
	case len(terms) > 0:
		return strings.Join(terms, " ") + " research grants"
	default:
		return strings.TrimSpace(question)
	}
}
