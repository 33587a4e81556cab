package normalize

// detectScanRows bounds how deep DetectHeaderRow looks for a header line.
// Funder exports often carry a few banner rows above the table.
const detectScanRows = 10

// DetectHeaderRow returns the index of the first row that looks like a
// header: at least two of its cells map onto canonical fields. Defaults to 0
// when nothing within the scan window qualifies.
func DetectHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > detectScanRows {
		limit = detectScanRows
	}

	for i := 0; i < limit; i++ {
		mapped := 0
		for _, cell := range rows[i] {
			if fallbackMapHeader(cell) != Unmapped {
				mapped++
			}
		}
		if mapped >= 2 {
			return i
		}
	}
	return 0
}
