package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ossgrants/grantgraph/backend/internal/ingest"
	"github.com/ossgrants/grantgraph/backend/internal/queue"
	"github.com/ossgrants/grantgraph/backend/internal/storage"
	"github.com/ossgrants/grantgraph/backend/internal/util"
	"github.com/ossgrants/grantgraph/backend/pkg/ai"
	oai "github.com/ossgrants/grantgraph/backend/pkg/ai/ollama"
	gai "github.com/ossgrants/grantgraph/backend/pkg/ai/openai"
	"github.com/ossgrants/grantgraph/backend/pkg/graph"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/logger/console"
	"github.com/ossgrants/grantgraph/backend/pkg/normalize"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// LanguageModel
	adapter := util.GetEnv("AI_ADAPTER")
	var aiClient ai.LanguageModel

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
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		aiClient = client
	case "openai":
		if util.GetEnv("AI_CHAT_KEY") == "" {
			logger.Warn("AI_CHAT_KEY is empty, running without a language model")
			break
		}
		aiClient = gai.NewGrantsOpenAIClient(gai.NewGrantsOpenAIClientParams{
			QueryModel:   util.GetEnv("AI_QUERY_MODEL"),
			MappingModel: util.GetEnv("AI_MAPPING_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			APIKey:  util.GetEnv("AI_CHAT_KEY"),
		})
	}

	// graph store
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

	// ingestion pipeline
	pipelineParams := ingest.NewPipelineParams{
		Sources:      sourcesFromEnv(),
		Mapper:       normalize.NewHeaderMapper(aiClient, util.GetEnv("AI_MAPPING_MODEL")),
		Store:        store,
		SnapshotPath: util.GetEnvString("SNAPSHOT_PATH", "data/grants_snapshot.csv"),
	}
	if archive := storage.NewArchiveStore(ctx); archive != nil {
		pipelineParams.Archiver = archive
	}
	pipeline := ingest.NewPipeline(pipelineParams)

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	queue.SetupQueues(ch, []string{queue.RefreshQueue})

	logger.Info("Listening for messages")

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	// one refresh at a time
	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.RefreshQueue,
		queue.RefreshQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.RefreshQueue, "err", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed", "queue", queue.RefreshQueue)
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.RefreshQueue)

				processingErr := queue.ProcessRefreshMessage(ctx, pipeline, string(msg.Body))
				if processingErr != nil {
					logger.Error("Error processing message", "queue", queue.RefreshQueue, "err", processingErr)
					handleProcessingError(consumerCh, msg, queue.RefreshQueue)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.RefreshQueue)
				}

				if aiClient != nil {
					metrics := aiClient.GetMetrics()
					aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
					logger.Info(
						"AI Metrics",
						"input_tokens", metrics.InputTokens,
						"output_tokens", metrics.OutputTokens,
						"total_tokens", metrics.TotalTokens,
						"duration", formatDuration(aiDuration),
					)
					aiClient.ResetMetrics()
				}

				logger.Info(
					"Processing time",
					"duration", formatDuration(time.Since(startTime)),
				)
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

// sourcesFromEnv builds the ingestion source list from configuration. A
// source is either a portal page to crawl for data files or a paginated
// registry API.
func sourcesFromEnv() []ingest.Source {
	sources := []ingest.Source{}

	if portalURL := util.GetEnv("NHMRC_PORTAL_URL"); portalURL != "" {
		sources = append(sources, ingest.Source{Name: "nhmrc", PortalURL: portalURL})
	}
	if apiURL := util.GetEnv("ARC_API_URL"); apiURL != "" {
		sources = append(sources, ingest.Source{Name: "arc", APIURL: apiURL})
	}

	if len(sources) == 0 {
		logger.Warn("No ingestion sources configured")
	}
	return sources
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
