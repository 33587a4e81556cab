package ai

import (
	"testing"
)

type mappingResult struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

func TestUnmarshalFlexible_ObjectVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  mappingResult
	}{
		{
			name:  "valid json object",
			input: `{"header":"Grant Title","field":"title"}`,
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
		{
			name:  "unquoted keys and single quotes",
			input: `{header: 'Grant Title', field: 'title'}`,
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
		{
			name:  "trailing comma",
			input: `{"header":"Grant Title","field":"title",}`,
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
		{
			name:  "truncated object",
			input: `{"header":"Grant Title","field":"title`,
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
		{
			name:  "stringified invalid object",
			input: `"{header: 'Grant Title', field: 'title'}"`,
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"header\": \"Grant Title\",\n  \"field\": \"title\"\n}\n",
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
		{
			name:  "duplicate leading brace no newlines",
			input: `{ { "header": "Grant Title", "field": "title" }`,
			want:  mappingResult{Header: "Grant Title", Field: "title"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got mappingResult
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("UnmarshalFlexible() got = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexible_ArrayVariants(t *testing.T) {
	input := `[{header:'App ID',field:'application_id'},{header:'CIA Name',field:'pi_name',}]`
	var got []mappingResult
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if len(got) != 2 || got[0].Field != "application_id" || got[1].Field != "pi_name" {
		t.Fatalf("UnmarshalFlexible() got = %+v, want two mappings", got)
	}
}

func TestUnmarshalFlexible_StringifiedWithNewlines(t *testing.T) {
	type headerMapping struct {
		Mappings map[string]string `json:"mappings"`
	}

	input := `"{\n  \"mappings\": {\n    \"Grant Title\": \"title\",\n    \"Total Amount\": \"amount\",\n    \"Sheet Notes (ignore)\": \"unmapped\"\n  }\n}\n"`
	var got headerMapping
	if err := UnmarshalFlexible(input, &got); err != nil {
		t.Fatalf("UnmarshalFlexible() error = %v", err)
	}
	if got.Mappings["Grant Title"] != "title" {
		t.Fatalf("UnmarshalFlexible() mappings = %+v", got.Mappings)
	}
	if got.Mappings["Total Amount"] != "amount" {
		t.Fatalf("UnmarshalFlexible() mappings = %+v", got.Mappings)
	}
	if got.Mappings["Sheet Notes (ignore)"] != "unmapped" {
		t.Fatalf("UnmarshalFlexible() mappings = %+v", got.Mappings)
	}
}

func TestUnmarshalFlexible_Unrecoverable(t *testing.T) {
	var got mappingResult
	if err := UnmarshalFlexible("the headers look fine to me", &got); err == nil {
		t.Fatal("UnmarshalFlexible() expected error for non-JSON input")
	}
}
