package normalize

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// WriteSnapshot writes the records as CSV via a temp file in the target
// directory and renames it into place, so readers never observe a partial
// snapshot. An existing snapshot is preserved as "<path>.bak" first.
func WriteSnapshot(path string, records []Record) error {
	columns := snapshotColumns(records)

	suffix, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate temp suffix: %w", err)
	}
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-"+suffix)

	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmpPath)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = record[column]
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("failed to back up previous snapshot: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	logger.Info("[Normalize] Snapshot written", "path", path, "records", len(records))
	return nil
}

// snapshotColumns orders the canonical fields first, then any extras from
// the records, with the source column last.
func snapshotColumns(records []Record) []string {
	present := map[string]bool{}
	for _, record := range records {
		for field := range record {
			present[field] = true
		}
	}

	columns := []string{}
	for _, field := range CanonicalFields {
		if present[field] {
			columns = append(columns, field)
			delete(present, field)
		}
	}
	delete(present, SourceField)

	extras := make([]string, 0, len(present))
	for field := range present {
		extras = append(extras, field)
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		columns = append(columns, extras...)
	}

	columns = append(columns, SourceField)
	return columns
}
