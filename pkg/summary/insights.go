package summary

import (
	"fmt"
	"strings"
)

// amountKeys are the row keys scanned for funding figures, covering both
// direct projections and flattened node properties.
var amountKeys = []string{"amount", "g_amount", "total_funding", "funding"}

// areaKeys are the row keys scanned for research areas.
var areaKeys = []string{"broad_research_area", "g_broad_research_area", "area", "research_area"}

// Insights derives short facts from the result rows: the match count, funding
// totals where amounts are present, and up to three research areas in
// first-seen order.
func Insights(rows []map[string]any) []string {
	insights := []string{fmt.Sprintf("Found %d matching records", len(rows))}

	total := 0.0
	counted := 0
	for _, row := range rows {
		if amount, ok := rowAmount(row); ok {
			total += amount
			counted++
		}
	}
	if counted > 0 {
		insights = append(insights, fmt.Sprintf("Total funding: %s", FormatAmount(total)))
		insights = append(insights, fmt.Sprintf("Average grant: %s", FormatAmount(total/float64(counted))))
	}

	areas := []string{}
	seen := map[string]bool{}
	for _, row := range rows {
		area := rowString(row, areaKeys...)
		if area == "" || seen[strings.ToLower(area)] {
			continue
		}
		seen[strings.ToLower(area)] = true
		areas = append(areas, area)
		if len(areas) == 3 {
			break
		}
	}
	if len(areas) > 0 {
		insights = append(insights, "Research areas include: "+strings.Join(areas, ", "))
	}

	return insights
}

func rowAmount(row map[string]any) (float64, bool) {
	for _, key := range amountKeys {
		if value, ok := row[key]; ok {
			if amount, parsed := ParseAmount(value); parsed {
				return amount, true
			}
		}
	}
	return 0, false
}

// rowString returns the first non-empty string under any of the keys.
func rowString(row map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := row[key]; ok {
			switch v := value.(type) {
			case string:
				if trimmed := strings.TrimSpace(v); trimmed != "" {
					return trimmed
				}
			case float64:
				return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
			case int64:
				return fmt.Sprintf("%d", v)
			case int:
				return fmt.Sprintf("%d", v)
			}
		}
	}
	return ""
}
