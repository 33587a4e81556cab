package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"
)

type fakeMapperModel struct {
	result headerMappingResult
	err    error
}

func (f *fakeMapperModel) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeMapperModel) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	if f.err != nil {
		return f.err
	}
	*(out.(*headerMappingResult)) = f.result
	return nil
}

func (f *fakeMapperModel) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (f *fakeMapperModel) ResetMetrics()               {}

func TestFallbackMapHeaders(t *testing.T) {
	headers := []string{"App ID", "CIA Name", "Total $"}
	mapping := FallbackMapHeaders(headers)

	if mapping["App ID"] != "application_id" {
		t.Fatalf(`expected App ID -> application_id, got %q`, mapping["App ID"])
	}
	if mapping["CIA Name"] != "pi_name" {
		t.Fatalf(`expected CIA Name -> pi_name, got %q`, mapping["CIA Name"])
	}
	if mapping["Total $"] != Unmapped {
		t.Fatalf(`expected Total $ -> unmapped, got %q`, mapping["Total $"])
	}
}

func TestFallbackMapHeaders_Variants(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Grant Title", "title"},
		{"title", "title"},
		{"Total Amount ($)", "amount"},
		{"Chief Investigator A", "pi_name"},
		{"Administering Institution", "institution"},
		{"Funding Commencement Year", "start_year"},
		{"Broad Research Area", "broad_research_area"},
		{"Scheme", "grant_type"},
		{"Random Column", Unmapped},
		{"", Unmapped},
	}

	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			if got := fallbackMapHeader(tc.header); got != tc.want {
				t.Fatalf("fallbackMapHeader(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestMapHeaders_NilModelUsesFallback(t *testing.T) {
	mapper := NewHeaderMapper(nil, "")
	mapping := mapper.MapHeaders(context.Background(), []string{"App ID", "CIA Name", "Total $"})

	if mapping["App ID"] != "application_id" || mapping["CIA Name"] != "pi_name" || mapping["Total $"] != Unmapped {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestMapHeaders_ModelErrorUsesFallback(t *testing.T) {
	mapper := NewHeaderMapper(&fakeMapperModel{err: errors.New("timeout")}, "test-model")
	mapping := mapper.MapHeaders(context.Background(), []string{"Grant Title"})

	if mapping["Grant Title"] != "title" {
		t.Fatalf("expected fallback mapping, got %v", mapping)
	}
}

func TestMapHeaders_InvalidModelFieldFallsBackPerHeader(t *testing.T) {
	model := &fakeMapperModel{
		result: headerMappingResult{
			Mappings: []headerMapping{
				{Header: "Grant Title", Field: "made_up_field"},
				{Header: "App ID", Field: "application_id"},
			},
		},
	}
	mapper := NewHeaderMapper(model, "test-model")
	mapping := mapper.MapHeaders(context.Background(), []string{"Grant Title", "App ID", "Missing Header"})

	// invalid model field -> alias fallback
	if mapping["Grant Title"] != "title" {
		t.Fatalf("expected alias fallback for invalid field, got %q", mapping["Grant Title"])
	}
	// valid model field kept
	if mapping["App ID"] != "application_id" {
		t.Fatalf("expected model mapping kept, got %q", mapping["App ID"])
	}
	// header the model skipped -> alias fallback
	if mapping["Missing Header"] != Unmapped {
		t.Fatalf("expected unmapped for unknown header, got %q", mapping["Missing Header"])
	}
}

func TestDetectHeaderRow(t *testing.T) {
	rows := [][]string{
		{"National Grants Export", ""},
		{"Generated 2024-01-01", ""},
		{"App ID", "Grant Title", "Total Amount"},
		{"123", "Venom peptides", "100000"},
	}

	if got := DetectHeaderRow(rows); got != 2 {
		t.Fatalf("DetectHeaderRow() = %d, want 2", got)
	}

	if got := DetectHeaderRow([][]string{{"1", "2"}, {"3", "4"}}); got != 0 {
		t.Fatalf("DetectHeaderRow() without header = %d, want 0", got)
	}
}
