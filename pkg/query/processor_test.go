package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

type fakeStore struct {
	rows       []map[string]any
	execErr    error
	lastCypher string
}

func (f *fakeStore) Execute(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	f.lastCypher = cypher
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.rows, nil
}

func (f *fakeStore) SchemaText(ctx context.Context) (string, error) {
	return "Node labels: Grant, Researcher", nil
}

type fakeSynth struct{}

func (fakeSynth) Summarize(ctx context.Context, question string, rows []map[string]any, includeWebSearch bool) string {
	titles := []string{}
	for _, row := range rows {
		if title, ok := row["title"].(string); ok {
			titles = append(titles, title)
		}
	}
	return "Summary: " + strings.Join(titles, "; ")
}

func (fakeSynth) Insights(rows []map[string]any) []string {
	return []string{fmt.Sprintf("Found %d matching records", len(rows))}
}

func TestProcess_ThreeRows(t *testing.T) {
	store := &fakeStore{
		rows: []map[string]any{
			{"title": "Venom peptides", "amount": 100000.0},
			{"title": "Ion channels", "amount": 250000.0},
			{"title": "Pain signalling", "amount": math.NaN()},
		},
	}
	processor := NewProcessor(store, NewTranslator(nil, ""), fakeSynth{})

	resp, err := processor.Process(context.Background(), "recent grants", false)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if resp.Count != 3 {
		t.Fatalf("expected count 3, got %d", resp.Count)
	}
	if len(resp.Data) != 3 || len(resp.RawResults) != 3 {
		t.Fatalf("expected 3 data and raw rows, got %d/%d", len(resp.Data), len(resp.RawResults))
	}
	if resp.Insights[0] != "Found 3 matching records" {
		t.Fatalf("unexpected insight: %v", resp.Insights)
	}
	if !strings.Contains(resp.Summary, "Venom peptides") || !strings.Contains(resp.Summary, "Ion channels") {
		t.Fatalf("summary missing titles: %s", resp.Summary)
	}
	if resp.Cypher != store.lastCypher {
		t.Fatalf("response cypher %q does not match executed %q", resp.Cypher, store.lastCypher)
	}
	if resp.Data[2]["amount"] != nil {
		t.Fatalf("expected NaN amount sanitized to nil, got %v", resp.Data[2]["amount"])
	}
}

func TestProcess_ExecutionError(t *testing.T) {
	store := &fakeStore{execErr: errors.New("connection refused")}
	processor := NewProcessor(store, NewTranslator(nil, ""), fakeSynth{})

	_, err := processor.Process(context.Background(), "recent grants", false)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecutionError, got %T: %v", err, err)
	}
	if execErr.Cypher == "" {
		t.Fatal("expected failing cypher captured on error")
	}
	if !errors.Is(err, store.execErr) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestProcess_FlattensNodeValues(t *testing.T) {
	store := &fakeStore{
		rows: []map[string]any{
			{"g": map[string]any{"title": "Venom peptides", "amount": 100000.0}, "researcher": "Glenn King"},
		},
	}
	processor := NewProcessor(store, NewTranslator(nil, ""), fakeSynth{})

	resp, err := processor.Process(context.Background(), "recent grants", false)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	row := resp.Data[0]
	if row["g_title"] != "Venom peptides" {
		t.Fatalf("expected flattened g_title, got %v", row)
	}
	if row["researcher"] != "Glenn King" {
		t.Fatalf("expected scalar passthrough, got %v", row)
	}
	if _, ok := row["g"]; ok {
		t.Fatal("expected nested map replaced by flattened keys")
	}

	// raw results keep the nested shape
	if _, ok := resp.RawResults[0]["g"].(map[string]any); !ok {
		t.Fatalf("expected raw results to keep nesting, got %v", resp.RawResults[0])
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	input := map[string]any{
		"ok":   1.5,
		"nan":  math.NaN(),
		"inf":  math.Inf(1),
		"ninf": math.Inf(-1),
		"nested": map[string]any{
			"nan":  math.NaN(),
			"list": []any{math.NaN(), 2.0, "text"},
		},
	}

	once := Sanitize(input).(map[string]any)
	twice := Sanitize(once).(map[string]any)

	if once["nan"] != nil || once["inf"] != nil || once["ninf"] != nil {
		t.Fatalf("expected non-finite values nil, got %v", once)
	}
	nested := once["nested"].(map[string]any)
	if nested["nan"] != nil {
		t.Fatalf("expected nested NaN nil, got %v", nested)
	}
	list := nested["list"].([]any)
	if list[0] != nil || list[1] != 2.0 || list[2] != "text" {
		t.Fatalf("unexpected sanitized list: %v", list)
	}

	if fmt.Sprintf("%v", once) != fmt.Sprintf("%v", twice) {
		t.Fatalf("Sanitize not idempotent:\nonce:  %v\ntwice: %v", once, twice)
	}
}
