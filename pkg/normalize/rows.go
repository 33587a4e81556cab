package normalize

import (
	"strings"
)

// NormalizeRows renames row cells onto canonical fields using the header
// mapping, drops unmapped columns and tags every record with its source
// label. Short rows read as empty cells; rows with no usable value at all
// are skipped.
func NormalizeRows(
	headers []string,
	rows [][]string,
	mapping map[string]string,
	sourceLabel string,
) []Record {
	records := make([]Record, 0, len(rows))

	for _, row := range rows {
		record := Record{}
		hasValue := false

		for i, header := range headers {
			field := mapping[header]
			if field == "" || field == Unmapped {
				continue
			}

			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			if value != "" {
				hasValue = true
			}

			// first mapped column wins when two headers map to one field
			if _, exists := record[field]; !exists || value != "" && record[field] == "" {
				record[field] = value
			}
		}

		if !hasValue {
			continue
		}

		record[SourceField] = sourceLabel
		records = append(records, record)
	}

	return records
}
