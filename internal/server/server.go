package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ossgrants/grantgraph/backend/internal/queue"
	mid "github.com/ossgrants/grantgraph/backend/internal/server/middleware"
	"github.com/ossgrants/grantgraph/backend/internal/util"
	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	oai "github.com/ossgrants/grantgraph/backend/pkg/ai/ollama"
	gai "github.com/ossgrants/grantgraph/backend/pkg/ai/openai"
	"github.com/ossgrants/grantgraph/backend/pkg/enrich"
	"github.com/ossgrants/grantgraph/backend/pkg/graph"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/query"
	"github.com/ossgrants/grantgraph/backend/pkg/summary"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := graph.NewStore(ctx, graph.NewStoreParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USERNAME"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		Database: util.GetEnvString("NEO4J_DATABASE", "neo4j"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to graph database", "err", err)
	}
	defer store.Close(ctx)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	queue.SetupQueues(ch, []string{queue.RefreshQueue})

	aiClient := NewLanguageModel()
	queryModel := util.GetEnv("AI_QUERY_MODEL")

	searcher := enrich.NewWebSearcher(enrich.NewWebSearcherParams{
		GoogleAPIKey:   util.GetEnv("GOOGLE_API_KEY"),
		GoogleEngineID: util.GetEnv("GOOGLE_CSE_ID"),
		SerpAPIKey:     util.GetEnv("SERPAPI_KEY"),
	})
	scraper := enrich.NewScraper(aiClient, queryModel)
	scholar := enrich.NewOpenAlexClient(util.GetEnv("OPENALEX_MAILTO"))

	synthesizer := summary.NewResultSynthesizer(summary.NewResultSynthesizerParams{
		LLM:      aiClient,
		Model:    queryModel,
		Searcher: searcher,
		Scraper:  scraper,
		Scholar:  scholar,
	})

	translator := query.NewTranslator(aiClient, queryModel)
	processor := query.NewProcessor(store, translator, synthesizer)

	app := &mid.App{
		Store:     store,
		Processor: processor,
		Queue:     ch,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// NewLanguageModel builds the configured chat client. Returns nil when no
// adapter is configured; every consumer treats a nil model as "use the
// deterministic fallback".
func NewLanguageModel() ai.LanguageModel {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewGrantsOllamaClient(oai.NewGrantsOllamaClientParams{
			QueryModel:   util.GetEnv("AI_QUERY_MODEL"),
			MappingModel: util.GetEnv("AI_MAPPING_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			APIKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	case "openai":
		if util.GetEnv("AI_CHAT_KEY") == "" {
			logger.Warn("AI_CHAT_KEY is empty, running without a language model")
			return nil
		}
		return gai.NewGrantsOpenAIClient(gai.NewGrantsOpenAIClientParams{
			QueryModel:   util.GetEnv("AI_QUERY_MODEL"),
			MappingModel: util.GetEnv("AI_MAPPING_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			APIKey:  util.GetEnv("AI_CHAT_KEY"),
		})
	default:
		return nil
	}
}
