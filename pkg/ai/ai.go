package ai

import (
	"context"
)

// LanguageModel is the completion surface the query and ingestion pipelines
// depend on. Implementations live in the openai and ollama subpackages; every
// consumer that can run without a model treats a nil LanguageModel as "use the
// deterministic fallback".
type LanguageModel interface {
	// GenerateCompletion sends a single-turn prompt and returns assistant text.
	GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateCompletionWithFormat enforces a JSON schema derived from out and
	// unmarshals the model response into it.
	GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...GenerateOption) error

	GetMetrics() ModelMetrics
	ResetMetrics()
}

// ModelMetrics accumulates token usage and wall time across calls.
type ModelMetrics struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	DurationMs   int64
}

// GenerateOptions holds per-call overrides for a completion request.
type GenerateOptions struct {
	Model         string
	SystemPrompts []string
	Temperature   float64
	Thinking      string
}

type GenerateOption func(*GenerateOptions)

// WithModel overrides the default model for this call.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts prepends system messages to the request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = append(o.SystemPrompts, prompts...)
	}
}

// WithTemperature overrides the default sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithThinking sets the reasoning effort for models that support it.
func WithThinking(level string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Thinking = level
	}
}
