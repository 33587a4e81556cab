package enrich

import (
	"strings"
	"testing"
)

func TestReconstructAbstract(t *testing.T) {
	inverted := map[string][]int{
		"venom":    {2},
		"Spider":   {0},
		"peptides": {1, 4},
		"block":    {3},
	}

	got := ReconstructAbstract(inverted)
	want := "Spider peptides venom block peptides"
	if got != want {
		t.Fatalf("ReconstructAbstract() = %q, want %q", got, want)
	}
}

func TestReconstructAbstract_Empty(t *testing.T) {
	if got := ReconstructAbstract(nil); got != "" {
		t.Fatalf("expected empty abstract, got %q", got)
	}
}

func TestFormatCitation(t *testing.T) {
	w := Work{
		Title:      "Venom peptides as pain therapeutics",
		Year:       2021,
		DOI:        "https://doi.org/10.1000/test",
		Authors:    []string{"Glenn King", "Jane Doe", "A. Smith", "B. Jones"},
		SourceName: "Nature Reviews",
	}

	citation := FormatCitation(w)
	if !strings.Contains(citation, "et al.") {
		t.Fatalf("expected truncated author list, got %q", citation)
	}
	if !strings.Contains(citation, "(2021)") {
		t.Fatalf("expected year, got %q", citation)
	}
	if !strings.Contains(citation, "Nature Reviews") {
		t.Fatalf("expected source, got %q", citation)
	}
}

func TestFamilyName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Glenn King", "King"},
		{"King, Glenn", "King"},
		{"King", "King"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := familyName(tc.input); got != tc.want {
			t.Fatalf("familyName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFilterWorks(t *testing.T) {
	works := []Work{
		{Title: "match", Year: 2021, Authors: []string{"Glenn King"}},
		{Title: "wrong author", Year: 2021, Authors: []string{"Someone Else"}},
		{Title: "too old", Year: 2015, Authors: []string{"Glenn King"}},
	}

	kept := filterWorks(works, "King", 2020, 5)
	if len(kept) != 1 || kept[0].Title != "match" {
		t.Fatalf("filterWorks() = %v, want only the matching work", kept)
	}
}
