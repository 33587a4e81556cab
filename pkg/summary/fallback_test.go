package summary

import (
	"strings"
	"testing"
)

func sampleRows() []map[string]any {
	return []map[string]any{
		{"title": "Venom peptides", "amount": 100000.0, "start_year": int64(2021), "researcher": "Glenn King"},
		{"title": "Ion channels", "amount": 250000.0, "start_year": int64(2019), "researcher": "Jane Doe"},
		{"title": "Venom peptides", "amount": 100000.0, "start_year": int64(2021), "researcher": "Glenn King"},
	}
}

func TestFallbackSummary_Deterministic(t *testing.T) {
	rows := sampleRows()

	first := FallbackSummary("venom research", rows)
	for i := 0; i < 5; i++ {
		if got := FallbackSummary("venom research", sampleRows()); got != first {
			t.Fatalf("fallback summary not byte-identical across runs:\n%s\n---\n%s", first, got)
		}
	}
}

func TestFallbackSummary_Sections(t *testing.T) {
	out := FallbackSummary("venom research", sampleRows())

	for _, section := range []string{"## Grant Funding Summary", "> venom research", "## Overview", "## Grants", "## Research Impact", "## Key Findings"} {
		if !strings.Contains(out, section) {
			t.Fatalf("summary missing %q:\n%s", section, out)
		}
	}
	if !strings.Contains(out, "scholar.google.com") {
		t.Fatalf("summary missing scholar link:\n%s", out)
	}
}

func TestFallbackSummary_Dedupes(t *testing.T) {
	out := FallbackSummary("venom research", sampleRows())

	// the duplicate (title, amount, year) row collapses
	if !strings.Contains(out, "Found 2 grants") {
		t.Fatalf("expected deduped count of 2:\n%s", out)
	}
	if strings.Count(out, "**Venom peptides**") != 1 {
		t.Fatalf("expected one Venom peptides entry:\n%s", out)
	}
	if !strings.Contains(out, "Grants span 2019 to 2021") {
		t.Fatalf("expected year range finding:\n%s", out)
	}
	if !strings.Contains(out, "Total identified funding: $350,000") {
		t.Fatalf("expected deduped funding total:\n%s", out)
	}
}

func TestFallbackSummary_Empty(t *testing.T) {
	out := FallbackSummary("anything", nil)
	if !strings.Contains(out, "No matching grants") {
		t.Fatalf("expected empty-result message:\n%s", out)
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		question string
		rows     []map[string]any
		want     string
	}{
		{
			name:     "quoted researcher with title terms",
			question: "grants by 'Glenn King'",
			rows:     []map[string]any{{"title": "Venom peptides for chronic pain"}},
			want:     `"Glenn King" venom peptides chronic pain research grant`,
		},
		{
			name:     "rows without researcher",
			question: "anything",
			rows:     []map[string]any{{"title": "The study of ion channels"}},
			want:     "ion channels research grants",
		},
		{
			name:     "no rows falls back to question",
			question: "what grants exist?",
			rows:     nil,
			want:     "what grants exist?",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildSearchQuery(tc.question, tc.rows); got != tc.want {
				t.Fatalf("BuildSearchQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}
