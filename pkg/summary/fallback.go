package summary

import (
	"fmt"
	"net/url"
	"strings"
)

// titleKeys are the row keys scanned for grant titles.
var titleKeys = []string{"title", "g_title", "grant_title"}

// researcherKeys are the row keys scanned for researcher names.
var researcherKeys = []string{"researcher", "pi_name", "r_name", "name"}

var yearKeys = []string{"start_year", "g_start_year", "year"}

const maxFallbackGrants = 5

// FallbackSummary renders a deterministic markdown summary from the rows
// alone. It makes no model or network calls: the same rows always produce the
// same bytes. Rows are deduplicated on (title, amount, year).
func FallbackSummary(question string, rows []map[string]any) string {
	var b strings.Builder

	b.WriteString("## Grant Funding Summary\n\n")
	b.WriteString("> " + strings.TrimSpace(question) + "\n\n")

	deduped := dedupeRows(rows)

	b.WriteString("## Overview\n")
	if len(deduped) == 0 {
		b.WriteString("No matching grants were found for this question.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Found %s matching the query.\n\n", formatCount(len(deduped), "grant", "grants")))

	b.WriteString("## Grants\n")
	shown := deduped
	if len(shown) > maxFallbackGrants {
		shown = shown[:maxFallbackGrants]
	}
	for i, row := range shown {
		title := rowString(row, titleKeys...)
		if title == "" {
			title = "Untitled grant"
		}
		line := fmt.Sprintf("%d. **%s**", i+1, title)

		details := []string{}
		if amount, ok := rowAmount(row); ok {
			details = append(details, FormatAmount(amount))
		}
		if year := rowString(row, yearKeys...); year != "" {
			details = append(details, year)
		}
		if researcher := rowString(row, researcherKeys...); researcher != "" {
			details = append(details, researcher)
		}
		if len(details) > 0 {
			line += " (" + strings.Join(details, ", ") + ")"
		}

		line += fmt.Sprintf(" [Google Scholar](https://scholar.google.com/scholar?q=%s)", url.QueryEscape(title))
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	b.WriteString("## Research Impact\n")
	total := 0.0
	counted := 0
	for _, row := range deduped {
		if amount, ok := rowAmount(row); ok {
			total += amount
			counted++
		}
	}
	if counted > 0 {
		b.WriteString(fmt.Sprintf("Total identified funding: %s across %s.\n\n",
			FormatAmount(total), formatCount(counted, "grant", "grants")))
	} else {
		b.WriteString("No funding amounts were reported for these grants.\n\n")
	}

	b.WriteString("## Key Findings\n")
	minYear, maxYear := yearRange(deduped)
	if minYear > 0 && maxYear > 0 {
		if minYear == maxYear {
			b.WriteString(fmt.Sprintf("All grants commenced in %d.\n", minYear))
		} else {
			b.WriteString(fmt.Sprintf("Grants span %d to %d.\n", minYear, maxYear))
		}
	} else {
		b.WriteString("Grant commencement years were not reported.\n")
	}

	return b.String()
}

// dedupeRows drops rows repeating the same (title, amount, year) triple,
// keeping first occurrences in order.
func dedupeRows(rows []map[string]any) []map[string]any {
	seen := map[string]bool{}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		key := strings.ToLower(rowString(row, titleKeys...)) + "|" +
			FormatAmount(rowValue(row, amountKeys...)) + "|" +
			rowString(row, yearKeys...)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}

func rowValue(row map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := row[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func yearRange(rows []map[string]any) (int, int) {
	minYear, maxYear := 0, 0
	for _, row := range rows {
		year := 0
		switch v := rowValue(row, yearKeys...).(type) {
		case int64:
			year = int(v)
		case int:
			year = v
		case float64:
			year = int(v)
		case string:
			fmt.Sscanf(strings.TrimSpace(v), "%d", &year)
		}
		if year == 0 {
			continue
		}
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}
	return minYear, maxYear
}
