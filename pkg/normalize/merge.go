package normalize

import (
	"sort"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// MissingnessThreshold is the largest tolerated fraction of empty cells in a
// merged record. A record at exactly the threshold is kept; anything strictly
// above is dropped.
const MissingnessThreshold = 0.80

// Columns returns the sorted union of field names across the records.
func Columns(records []Record) []string {
	set := map[string]bool{}
	for _, record := range records {
		for field := range record {
			set[field] = true
		}
	}

	columns := make([]string, 0, len(set))
	for field := range set {
		columns = append(columns, field)
	}
	sort.Strings(columns)
	return columns
}

// Missingness is the fraction of the given columns that are empty or absent
// in the record.
func Missingness(record Record, columns []string) float64 {
	if len(columns) == 0 {
		return 0
	}
	missing := 0
	for _, column := range columns {
		if record[column] == "" {
			missing++
		}
	}
	return float64(missing) / float64(len(columns))
}

// MergeAndFilter concatenates record batches and drops records whose
// missingness over the merged column union exceeds the threshold.
func MergeAndFilter(batches ...[]Record) []Record {
	merged := []Record{}
	for _, batch := range batches {
		merged = append(merged, batch...)
	}

	columns := Columns(merged)
	kept := make([]Record, 0, len(merged))
	dropped := 0
	for _, record := range merged {
		if Missingness(record, columns) > MissingnessThreshold {
			dropped++
			continue
		}
		kept = append(kept, record)
	}

	if dropped > 0 {
		logger.Info("[Normalize] Dropped sparse records", "dropped", dropped, "kept", len(kept))
	}
	return kept
}
