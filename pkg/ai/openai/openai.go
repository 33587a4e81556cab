package openai

import (
	"sync"

	"github.com/ossgrants/grantgraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GrantsOpenAIClient implements ai.LanguageModel against any OpenAI-compatible
// chat API. Pointing BaseURL at DeepSeek or OpenRouter works unchanged since
// both speak the same wire protocol.
type GrantsOpenAIClient struct {
	queryModel   string
	mappingModel string

	baseURL string
	apiKey  string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Chat *openai.Client
}

// NewGrantsOpenAIClientParams contains configuration for creating a client.
// QueryModel drives Cypher translation and summaries, MappingModel drives
// structured header mapping during ingestion.
type NewGrantsOpenAIClientParams struct {
	QueryModel   string
	MappingModel string

	BaseURL string
	APIKey  string
}

// NewGrantsOpenAIClient creates a client for an OpenAI-compatible endpoint.
//
// Example:
//
//	client := openai.NewGrantsOpenAIClient(openai.NewGrantsOpenAIClientParams{
//		QueryModel:   "gpt-4o-mini",
//		MappingModel: "gpt-4o-mini",
//		APIKey:       os.Getenv("OPENAI_API_KEY"),
//	})
func NewGrantsOpenAIClient(
	params NewGrantsOpenAIClientParams,
) *GrantsOpenAIClient {
	return &GrantsOpenAIClient{
		queryModel:   params.QueryModel,
		mappingModel: params.MappingModel,

		baseURL: params.BaseURL,
		apiKey:  params.APIKey,

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		Chat: newOpenaiClient(params.BaseURL, params.APIKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
