package normalize

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grants.csv")

	records := []Record{
		{"title": "Venom peptides", "amount": "100000", SourceField: "nhmrc"},
		{"title": "Ion channels", "amount": "250000", SourceField: "arc"},
	}

	if err := WriteSnapshot(path, records); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open snapshot: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	header := rows[0]
	if header[0] != "title" || header[1] != "amount" {
		t.Fatalf("expected canonical column order, got %v", header)
	}
	if header[len(header)-1] != SourceField {
		t.Fatalf("expected source as last column, got %v", header)
	}

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, got %d entries", len(entries))
	}
}

func TestWriteSnapshot_BacksUpPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grants.csv")

	if err := WriteSnapshot(path, []Record{{"title": "First"}}); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if err := WriteSnapshot(path, []Record{{"title": "Second"}}); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if string(backup) == "" {
		t.Fatal("expected backup content")
	}

	current, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	if string(current) == string(backup) {
		t.Fatal("expected snapshot to differ from backup")
	}
}
