package graph

import (
	"testing"
)

func TestLoadRow_ParsesNumericFields(t *testing.T) {
	row := loadRow(GrantRecord{
		"application_id": "APP123",
		"title":          "  Immunology of venom peptides ",
		"amount":         "$1,234,500.50",
		"start_year":     "2021.0",
		"pi_name":        "Glenn King",
		"investigators":  "Glenn King; Jane Doe ;",
	})

	if row["id"] != "APP123" {
		t.Fatalf("expected id APP123, got %v", row["id"])
	}
	if row["title"] != "Immunology of venom peptides" {
		t.Fatalf("expected trimmed title, got %q", row["title"])
	}
	if row["amount"] != 1234500.50 {
		t.Fatalf("expected parsed amount, got %v", row["amount"])
	}
	if row["start_year"] != 2021 {
		t.Fatalf("expected parsed year, got %v", row["start_year"])
	}

	investigators, ok := row["investigators"].([]any)
	if !ok || len(investigators) != 2 {
		t.Fatalf("expected 2 investigators, got %v", row["investigators"])
	}
	if investigators[1] != "Jane Doe" {
		t.Fatalf("expected trimmed investigator, got %v", investigators[1])
	}
}

func TestLoadRow_MissingValues(t *testing.T) {
	row := loadRow(GrantRecord{
		"title":      "Untitled",
		"amount":     "N/A",
		"start_year": "",
	})

	if row["id"] == "" {
		t.Fatal("expected generated id for record without application_id")
	}
	if row["amount"] != nil {
		t.Fatalf("expected nil amount for unparseable input, got %v", row["amount"])
	}
	if row["start_year"] != nil {
		t.Fatalf("expected nil year for empty input, got %v", row["start_year"])
	}
}

func TestParseLoadAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  any
	}{
		{"currency formatting", "$1,234,500.50", 1234500.50},
		{"plain integer", "500000", 500000.0},
		{"zero kept", "0", 0.0},
		{"empty", "", nil},
		{"non numeric", "N/A", nil},
		{"negative dropped", "-50000", nil},
		{"negative currency dropped", "-$1,000", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseLoadAmount(tc.input); got != tc.want {
				t.Fatalf("parseLoadAmount(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}
