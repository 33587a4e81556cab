package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// HeaderMapper maps source column headers onto the canonical vocabulary. With
// a model it asks for the whole header set in one structured call and
// validates every returned field; headers the model misses or maps outside
// the vocabulary fall back to the alias table. Without a model the alias
// table is used directly. MapHeaders is total: every input header gets an
// entry.
type HeaderMapper struct {
	llm   ai.LanguageModel
	model string
}

// NewHeaderMapper creates a mapper. A nil llm selects the alias table for
// every header.
func NewHeaderMapper(llm ai.LanguageModel, model string) *HeaderMapper {
	return &HeaderMapper{
		llm:   llm,
		model: model,
	}
}

type headerMapping struct {
	Header string `json:"header" jsonschema_description:"The source column header, exactly as given"`
	Field  string `json:"field" jsonschema_description:"The canonical field name, or 'unmapped'"`
}

type headerMappingResult struct {
	Mappings []headerMapping `json:"mappings"`
}

// MapHeaders returns a canonical field (or Unmapped) for every header.
func (m *HeaderMapper) MapHeaders(ctx context.Context, headers []string) map[string]string {
	if m.llm == nil {
		return FallbackMapHeaders(headers)
	}

	prompt := buildMappingPrompt(headers)

	opts := []ai.GenerateOption{ai.WithTemperature(0.0)}
	if m.model != "" {
		opts = append(opts, ai.WithModel(m.model))
	}

	var result headerMappingResult
	err := m.llm.GenerateCompletionWithFormat(
		ctx,
		"header_mapping",
		"Maps source column headers onto canonical grant field names",
		prompt,
		&result,
		opts...,
	)
	if err != nil {
		logger.Warn("[Normalize] Model header mapping failed, using aliases", "err", err)
		return FallbackMapHeaders(headers)
	}

	byHeader := make(map[string]string, len(result.Mappings))
	for _, mapping := range result.Mappings {
		byHeader[mapping.Header] = strings.TrimSpace(mapping.Field)
	}

	mapping := make(map[string]string, len(headers))
	for _, header := range headers {
		field, ok := byHeader[header]
		if !ok || (field != Unmapped && !IsCanonical(field)) {
			if ok {
				logger.Warn("[Normalize] Model mapped header outside vocabulary", "header", header, "field", field)
			}
			mapping[header] = fallbackMapHeader(header)
			continue
		}
		mapping[header] = field
	}
	return mapping
}

func buildMappingPrompt(headers []string) string {
	var b strings.Builder
	b.WriteString("Map each source column header to one canonical grant field.\n")
	b.WriteString("Canonical fields: " + strings.Join(CanonicalFields, ", ") + "\n")
	b.WriteString("Use \"" + Unmapped + "\" when no canonical field fits. Never invent field names.\n\n")
	b.WriteString("Headers:\n")
	for _, header := range headers {
		fmt.Fprintf(&b, "- %s\n", header)
	}
	return b.String()
}
