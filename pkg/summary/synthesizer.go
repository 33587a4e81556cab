package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	"github.com/ossgrants/grantgraph/backend/pkg/enrich"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// maxSampleRows caps how many rows go into the summarization prompt. The
// prompt still states the true match count.
const maxSampleRows = 5

// Searcher provides web context for a summary.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []enrich.WebResult
}

// PageSummarizer fills per-page relevance notes into search results.
type PageSummarizer interface {
	EnrichResults(ctx context.Context, question string, results []enrich.WebResult) []enrich.WebResult
}

// Scholar looks up published works for a researcher.
type Scholar interface {
	SearchByAuthor(ctx context.Context, name string, limit int) ([]enrich.Work, error)
}

// ResultSynthesizer turns result rows into a sectioned markdown summary.
// With a model it prompts over a row sample plus optional web and
// bibliographic context; without one, or when the model fails, it renders the
// deterministic fallback. The fallback path never touches the network.
type ResultSynthesizer struct {
	llm   ai.LanguageModel
	model string

	searcher Searcher
	scraper  PageSummarizer
	scholar  Scholar
}

// NewResultSynthesizerParams wires the synthesizer. Everything except the
// rows is optional.
type NewResultSynthesizerParams struct {
	LLM   ai.LanguageModel
	Model string

	Searcher Searcher
	Scraper  PageSummarizer
	Scholar  Scholar
}

func NewResultSynthesizer(params NewResultSynthesizerParams) *ResultSynthesizer {
	return &ResultSynthesizer{
		llm:      params.LLM,
		model:    params.Model,
		searcher: params.Searcher,
		scraper:  params.Scraper,
		scholar:  params.Scholar,
	}
}

// Summarize produces the markdown summary for the rows. Web enrichment only
// runs when the caller asked for it.
func (s *ResultSynthesizer) Summarize(ctx context.Context, question string, rows []map[string]any, includeWebSearch bool) string {
	if s.llm == nil {
		return FallbackSummary(question, rows)
	}

	prompt, err := s.buildPrompt(ctx, question, rows, includeWebSearch)
	if err != nil {
		logger.Warn("[Summary] Prompt assembly failed, using fallback", "err", err)
		return FallbackSummary(question, rows)
	}

	opts := []ai.GenerateOption{ai.WithTemperature(0.3)}
	if s.model != "" {
		opts = append(opts, ai.WithModel(s.model))
	}

	out, err := s.llm.GenerateCompletion(ctx, prompt, opts...)
	if err != nil {
		logger.Warn("[Summary] Model summary failed, using fallback", "err", err)
		return FallbackSummary(question, rows)
	}

	out = strings.TrimSpace(out)
	if out == "" || !strings.Contains(out, "## Overview") {
		logger.Warn("[Summary] Model summary missing required sections, using fallback")
		return FallbackSummary(question, rows)
	}
	return out
}

// Insights derives short facts from the rows. This is always deterministic.
func (s *ResultSynthesizer) Insights(rows []map[string]any) []string {
	return Insights(rows)
}

func (s *ResultSynthesizer) buildPrompt(ctx context.Context, question string, rows []map[string]any, includeWebSearch bool) (string, error) {
	sample := rows
	if len(sample) > maxSampleRows {
		sample = sample[:maxSampleRows]
	}
	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode sample rows: %w", err)
	}

	var b strings.Builder
	b.WriteString("You summarize research grant query results as markdown.\n\n")
	b.WriteString(fmt.Sprintf("Question: %s\n", question))
	b.WriteString(fmt.Sprintf("Total matching records: %d (showing %d)\n\n", len(rows), len(sample)))
	b.WriteString("Records:\n")
	b.Write(sampleJSON)
	b.WriteString("\n")

	if includeWebSearch {
		if web := s.webContext(ctx, question, rows); web != "" {
			b.WriteString("\nWeb context:\n")
			b.WriteString(web)
		}
	}
	if works := s.scholarContext(ctx, rows); works != "" {
		b.WriteString("\nPublished works:\n")
		b.WriteString(works)
	}

	b.WriteString("\nWrite the summary with exactly these sections:\n")
	b.WriteString("## <short title>\n")
	b.WriteString("> restate the question as a blockquote\n")
	b.WriteString("## Overview - one paragraph, state the total match count\n")
	b.WriteString("## Grants - numbered list of the shown grants, each with a Google Scholar link\n")
	b.WriteString("## Key Research Themes - bullet list\n")
	b.WriteString("Only use facts from the records and context above.\n")

	return b.String(), nil
}

// webContext is fail-soft: any provider failure returns an empty block.
func (s *ResultSynthesizer) webContext(ctx context.Context, question string, rows []map[string]any) string {
	if s.searcher == nil {
		return ""
	}

	results := s.searcher.Search(ctx, BuildSearchQuery(question, rows), 3)
	if len(results) == 0 {
		return ""
	}
	if s.scraper != nil {
		results = s.scraper.EnrichResults(ctx, question, results)
	}

	var b strings.Builder
	for _, r := range results {
		b.WriteString("- " + r.Title + " (" + r.Link + ")")
		if r.Summary != "" {
			b.WriteString(": " + r.Summary)
		} else if r.Snippet != "" {
			b.WriteString(": " + r.Snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ResultSynthesizer) scholarContext(ctx context.Context, rows []map[string]any) string {
	if s.scholar == nil || len(rows) == 0 {
		return ""
	}

	researcher := rowString(rows[0], researcherKeys...)
	if researcher == "" {
		return ""
	}

	works, err := s.scholar.SearchByAuthor(ctx, researcher, 3)
	if err != nil {
		logger.Debug("[Summary] Scholar lookup failed", "researcher", researcher, "err", err)
		return ""
	}

	var b strings.Builder
	for _, w := range works {
		b.WriteString("- " + enrich.FormatCitation(w) + "\n")
	}
	return b.String()
}
