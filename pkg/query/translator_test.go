package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	"github.com/ossgrants/grantgraph/backend/pkg/graph"
)

type fakeModel struct {
	response string
	err      error
}

func (f *fakeModel) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return f.response, f.err
}

func (f *fakeModel) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	return errors.New("not implemented")
}

func (f *fakeModel) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (f *fakeModel) ResetMetrics()               {}

func TestTranslate_TotalWithoutModel(t *testing.T) {
	translator := NewTranslator(nil, "")

	questions := []string{
		"",
		"show me recent grants",
		"what grants does 'Glenn King' have?",
		"cancer research funding",
		"which institutions hold the most grants",
		"who collaborates with whom",
		"completely unrelated gibberish ~~~ 42",
		strings.Repeat("long ", 200),
	}

	for _, q := range questions {
		cypher := translator.Translate(context.Background(), q, "")
		if cypher == "" {
			t.Fatalf("Translate(%q) returned empty statement", q)
		}
		if !strings.HasSuffix(cypher, "ORDER BY g.start_year DESC LIMIT 20") {
			t.Fatalf("Translate(%q) missing recency bound: %s", q, cypher)
		}
		if IsDestructive(cypher) {
			t.Fatalf("Translate(%q) produced destructive statement: %s", q, cypher)
		}
	}
}

func TestFallbackCypher_UsesLoaderEdgeVocabulary(t *testing.T) {
	questions := []string{
		"show me recent grants",
		"grants held by 'glenn king'",
		"cancer research funding",
		"which institutions hold the most grants",
		"who collaborates with whom",
		"largest grants by funding",
	}

	stale := []string{"RECEIVED", "CONTRIBUTED_TO", "ADMINISTERED_BY", "IN_FIELD"}

	for _, q := range questions {
		cypher := FallbackCypher(q)
		if !strings.Contains(cypher, graph.RelPrincipalInvestigator) &&
			!strings.Contains(cypher, graph.RelHostedBy) {
			t.Fatalf("FallbackCypher(%q) uses none of the loaded edge types: %s", q, cypher)
		}
		for _, old := range stale {
			for _, edge := range strings.Split(cypher, "[:") {
				if strings.HasPrefix(edge, old+"]") || strings.HasPrefix(edge, old+"|") {
					t.Fatalf("FallbackCypher(%q) references edge type %s the loader never creates: %s", q, old, cypher)
				}
			}
		}
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	translator := NewTranslator(nil, "")
	question := "grants by 'Marie Curie' on radiation"

	first := translator.Translate(context.Background(), question, "")
	for i := 0; i < 5; i++ {
		got := translator.Translate(context.Background(), question, "")
		if got != first {
			t.Fatalf("fallback translation not deterministic:\nfirst: %s\ngot:   %s", first, got)
		}
	}
}

func TestTranslate_QuotedNameOrders(t *testing.T) {
	translator := NewTranslator(nil, "")

	direct := translator.Translate(context.Background(), "grants held by 'glenn king'", "")
	inverted := translator.Translate(context.Background(), "grants held by 'king, glenn'", "")

	if direct != inverted {
		t.Fatalf("name orders should normalize to the same statement:\n%s\n%s", direct, inverted)
	}
	if !strings.Contains(direct, "'glenn king'") {
		t.Fatalf("expected canonical variant in statement: %s", direct)
	}
	if !strings.Contains(direct, "'king, glenn'") {
		t.Fatalf("expected inverted variant in statement: %s", direct)
	}
	if !strings.Contains(direct, "size(r.name) <= 25") {
		t.Fatalf("expected length guard for 'glenn king' (+%d): %s", nameLengthSlack, direct)
	}
}

func TestTranslate_ModelOutputCleaned(t *testing.T) {
	model := &fakeModel{
		response: "<think>reasoning here</think>\n```cypher\nMATCH (g:Grant)\nRETURN g.title AS title\nORDER BY g.start_year DESC\nLIMIT 5\n```",
	}
	translator := NewTranslator(model, "test-model")

	cypher := translator.Translate(context.Background(), "anything", "")
	want := "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.start_year DESC LIMIT 5"
	if cypher != want {
		t.Fatalf("Translate() = %q, want %q", cypher, want)
	}
}

func TestTranslate_DestructiveModelOutputFallsBack(t *testing.T) {
	model := &fakeModel{response: "MATCH (n) DETACH DELETE n"}
	translator := NewTranslator(model, "test-model")

	cypher := translator.Translate(context.Background(), "show me recent grants", "")
	if cypher != FallbackCypher("show me recent grants") {
		t.Fatalf("expected fallback for destructive model output, got %s", cypher)
	}
}

func TestTranslate_ModelErrorFallsBack(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	translator := NewTranslator(model, "test-model")

	cypher := translator.Translate(context.Background(), "cancer grants", "")
	if cypher != FallbackCypher("cancer grants") {
		t.Fatalf("expected fallback on model error, got %s", cypher)
	}
}

func TestTranslate_ModelOutputWithoutLimitGetsBounded(t *testing.T) {
	model := &fakeModel{response: "MATCH (g:Grant) RETURN g.title AS title"}
	translator := NewTranslator(model, "test-model")

	cypher := translator.Translate(context.Background(), "anything", "")
	if !strings.HasSuffix(cypher, "ORDER BY g.start_year DESC LIMIT 20") {
		t.Fatalf("expected appended bound, got %s", cypher)
	}
}

func TestEnsureBounded(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no limit no order",
			input: "MATCH (g:Grant) RETURN g.title AS title",
			want:  "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.start_year DESC LIMIT 20",
		},
		{
			name:  "order without limit",
			input: "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.amount DESC",
			want:  "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.amount DESC LIMIT 20",
		},
		{
			name:  "limit under cap kept",
			input: "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.start_year DESC LIMIT 5",
			want:  "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.start_year DESC LIMIT 5",
		},
		{
			name:  "limit over cap clamped",
			input: "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.start_year DESC LIMIT 500",
			want:  "MATCH (g:Grant) RETURN g.title AS title ORDER BY g.start_year DESC LIMIT 20",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := EnsureBounded(tc.input); got != tc.want {
				t.Fatalf("EnsureBounded(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNameVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "Glenn King", []string{"glenn king", "king, glenn"}},
		{"inverted", "King, Glenn", []string{"glenn king", "king, glenn"}},
		{"honorific", "Dr. Glenn King", []string{"glenn king", "king, glenn"}},
		{"single", "King", []string{"king"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := nameVariants(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("nameVariants(%q) = %v, want %v", tc.input, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("nameVariants(%q) = %v, want %v", tc.input, got, tc.want)
				}
			}
		})
	}
}
