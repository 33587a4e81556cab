package normalize

import (
	"fmt"
	"testing"
)

// tenColumnRecord builds a record over ten columns with the given number of
// populated cells.
func tenColumnRecord(populated int) Record {
	record := Record{}
	for i := 0; i < 10; i++ {
		value := ""
		if i < populated {
			value = fmt.Sprintf("value-%d", i)
		}
		record[fmt.Sprintf("col_%d", i)] = value
	}
	return record
}

func TestMergeAndFilter_MissingnessBoundary(t *testing.T) {
	full := tenColumnRecord(10)
	atThreshold := tenColumnRecord(2)   // 8/10 empty = 0.80, kept
	overThreshold := tenColumnRecord(1) // 9/10 empty = 0.90, dropped

	kept := MergeAndFilter([]Record{full, atThreshold, overThreshold})

	if len(kept) != 2 {
		t.Fatalf("expected 2 records kept, got %d", len(kept))
	}
	if kept[1]["col_1"] != "value-1" {
		t.Fatalf("expected at-threshold record kept, got %v", kept[1])
	}
}

func TestMergeAndFilter_ColumnUnionDenominator(t *testing.T) {
	// record B is complete over its own 2 columns but sparse over the union
	a := Record{"title": "A", "amount": "1", "status": "active", "pi_name": "X", "institution": "Y"}
	b := Record{"title": "B", "amount": "2"}

	kept := MergeAndFilter([]Record{a}, []Record{b})

	// union has 5 columns; B misses 3/5 = 0.6 <= 0.8, kept
	if len(kept) != 2 {
		t.Fatalf("expected both records kept, got %d", len(kept))
	}
}

func TestMissingness(t *testing.T) {
	columns := []string{"a", "b", "c", "d"}
	record := Record{"a": "x", "b": ""}

	if got := Missingness(record, columns); got != 0.75 {
		t.Fatalf("Missingness() = %v, want 0.75", got)
	}
	if got := Missingness(Record{}, nil); got != 0 {
		t.Fatalf("Missingness() with no columns = %v, want 0", got)
	}
}

func TestNormalizeRows(t *testing.T) {
	headers := []string{"App ID", "Grant Title", "Total $"}
	mapping := map[string]string{
		"App ID":      "application_id",
		"Grant Title": "title",
		"Total $":     Unmapped,
	}
	rows := [][]string{
		{"123", "  Venom peptides ", "100000"},
		{"456", "Ion channels"}, // short row
		{"", "", ""},            // fully empty, skipped
	}

	records := NormalizeRows(headers, rows, mapping, "nhmrc")

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["application_id"] != "123" || records[0]["title"] != "Venom peptides" {
		t.Fatalf("unexpected first record: %v", records[0])
	}
	if _, ok := records[0]["Total $"]; ok {
		t.Fatal("unmapped column should be dropped")
	}
	if records[0][SourceField] != "nhmrc" {
		t.Fatalf("expected source tag, got %v", records[0])
	}
	if records[1]["title"] != "Ion channels" {
		t.Fatalf("unexpected second record: %v", records[1])
	}
}
