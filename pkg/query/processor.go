package query

import (
	"context"
	"fmt"

	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// GraphStore is the read surface the processor needs from the graph layer.
type GraphStore interface {
	Execute(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	SchemaText(ctx context.Context) (string, error)
}

// Synthesizer produces the human-readable portion of a response.
type Synthesizer interface {
	Summarize(ctx context.Context, question string, rows []map[string]any, includeWebSearch bool) string
	Insights(rows []map[string]any) []string
}

// ExecutionError wraps a graph execution failure together with the statement
// that caused it, so handlers can distinguish bad Cypher from transport
// problems upstream.
type ExecutionError struct {
	Cypher string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v (cypher: %s)", e.Err, e.Cypher)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Response is the full answer for one question.
type Response struct {
	Query      string           `json:"query"`
	Cypher     string           `json:"cypher"`
	Data       []map[string]any `json:"data"`
	RawResults []map[string]any `json:"raw_results"`
	Summary    string           `json:"summary"`
	Insights   []string         `json:"insights"`
	Count      int              `json:"count"`
}

// Processor runs the full question pipeline: translate, execute, sanitize,
// flatten, synthesize.
type Processor struct {
	store      GraphStore
	translator *Translator
	synth      Synthesizer
}

// NewProcessor wires the pipeline stages together.
func NewProcessor(store GraphStore, translator *Translator, synth Synthesizer) *Processor {
	return &Processor{
		store:      store,
		translator: translator,
		synth:      synth,
	}
}

// Process answers a question. Translation never fails; execution failures
// return an *ExecutionError.
func (p *Processor) Process(ctx context.Context, question string, includeWebSearch bool) (*Response, error) {
	schema, err := p.store.SchemaText(ctx)
	if err != nil {
		logger.Warn("[Query] Schema introspection failed, translating without it", "err", err)
		schema = ""
	}

	cypher := p.translator.Translate(ctx, question, schema)
	logger.Debug("[Query] Translated question", "question", question, "cypher", cypher)

	rows, err := p.store.Execute(ctx, cypher, nil)
	if err != nil {
		return nil, &ExecutionError{Cypher: cypher, Err: err}
	}

	raw := SanitizeRows(rows)
	data := make([]map[string]any, len(raw))
	for i, row := range raw {
		data[i] = FlattenRow(row)
	}

	summary := p.synth.Summarize(ctx, question, data, includeWebSearch)
	insights := p.synth.Insights(data)

	return &Response{
		Query:      question,
		Cypher:     cypher,
		Data:       data,
		RawResults: raw,
		Summary:    summary,
		Insights:   insights,
		Count:      len(data),
	}, nil
}
