package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

const translatorSystemPrompt = `You translate natural-language questions about research grants into a single read-only Cypher statement for Neo4j.
Rules:
- Output only the Cypher statement. No prose, no markdown fences.
- Read-only: never use DELETE, DROP, CREATE, MERGE, SET or REMOVE.
- Always alias returned expressions with snake_case names.
- Always end with ORDER BY and LIMIT 20 or less.
- Researcher names are stored as given name followed by family name.`

// Translator turns a question into a Cypher statement. With a model it
// prompts for a statement and validates the output; without one, or when the
// model misbehaves, it falls back to the deterministic rule table. Translate
// is total: it always returns a runnable statement.
type Translator struct {
	llm   ai.LanguageModel
	model string
}

// NewTranslator creates a Translator. A nil llm selects the deterministic
// fallback for every question.
func NewTranslator(llm ai.LanguageModel, model string) *Translator {
	return &Translator{
		llm:   llm,
		model: model,
	}
}

// Translate maps a question to Cypher. The schema string grounds the model in
// the live graph layout; pass "" when introspection is unavailable.
func (t *Translator) Translate(ctx context.Context, question string, schema string) string {
	if t.llm == nil {
		return FallbackCypher(question)
	}

	prompt := t.buildPrompt(question, schema)

	opts := []ai.GenerateOption{
		ai.WithSystemPrompts(translatorSystemPrompt),
		ai.WithTemperature(0.0),
	}
	if t.model != "" {
		opts = append(opts, ai.WithModel(t.model))
	}

	raw, err := t.llm.GenerateCompletion(ctx, prompt, opts...)
	if err != nil {
		logger.Warn("[Query] Model translation failed, using fallback", "err", err)
		return FallbackCypher(question)
	}

	cypher := CleanModelOutput(raw)
	if cypher == "" {
		logger.Warn("[Query] Model returned empty statement, using fallback")
		return FallbackCypher(question)
	}
	if IsDestructive(cypher) {
		logger.Warn("[Query] Model returned destructive statement, using fallback", "cypher", cypher)
		return FallbackCypher(question)
	}
	if !strings.Contains(strings.ToUpper(cypher), "MATCH") {
		logger.Warn("[Query] Model output does not look like Cypher, using fallback", "output", cypher)
		return FallbackCypher(question)
	}

	return EnsureBounded(cypher)
}

func (t *Translator) buildPrompt(question string, schema string) string {
	var b strings.Builder

	if schema != "" {
		b.WriteString("Graph schema:\n")
		b.WriteString(schema)
		b.WriteString("\n")
	}

	b.WriteString("Grant properties: ")
	b.WriteString(strings.Join(GrantProperties, ", "))
	b.WriteString("\nResearcher properties: ")
	b.WriteString(strings.Join(ResearcherProperties, ", "))
	b.WriteString("\n\n")

	b.WriteString("Examples:\n")
	b.WriteString("Question: What grants does 'Glenn King' have?\n")
	b.WriteString("Cypher: " + researcherQuery("glenn king") + "\n\n")
	b.WriteString("Question: Show me the most recent grants\n")
	b.WriteString("Cypher: " + recentGrantsQuery() + "\n\n")

	b.WriteString(fmt.Sprintf("Question: %s\nCypher:", question))

	return b.String()
}
