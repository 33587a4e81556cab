package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rabbitmq/amqp091-go"

	"github.com/ossgrants/grantgraph/backend/internal/ingest"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// RefreshJobMsg asks the worker to rebuild the dataset from all sources.
type RefreshJobMsg struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlation_id"`
	RequestedAt   string `json:"requested_at"`
}

// Refresher runs a full dataset refresh.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PublishRefresh enqueues a refresh job and returns its correlation id.
func PublishRefresh(ch *amqp091.Channel, message string) (string, error) {
	correlationID, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate correlation id: %w", err)
	}

	job := RefreshJobMsg{
		Message:       message,
		CorrelationID: correlationID,
		RequestedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal refresh job: %w", err)
	}

	if err := PublishFIFO(ch, RefreshQueue, data); err != nil {
		return "", fmt.Errorf("failed to publish refresh job: %w", err)
	}
	return correlationID, nil
}

// ProcessRefreshMessage handles one refresh job. A job arriving while a
// refresh is already running is dropped, not retried: the running refresh
// covers it.
func ProcessRefreshMessage(ctx context.Context, pipeline Refresher, msg string) error {
	job := new(RefreshJobMsg)
	if err := json.Unmarshal([]byte(msg), job); err != nil {
		return fmt.Errorf("failed to unmarshal refresh job: %w", err)
	}

	logger.Info("[Queue] Processing refresh job", "correlation_id", job.CorrelationID)

	if err := pipeline.Refresh(ctx); err != nil {
		if errors.Is(err, ingest.ErrBusy) {
			logger.Warn("[Queue] Refresh already running, dropping job", "correlation_id", job.CorrelationID)
			return nil
		}
		return fmt.Errorf("refresh job %s failed: %w", job.CorrelationID, err)
	}

	logger.Info("[Queue] Refresh job completed", "correlation_id", job.CorrelationID)
	return nil
}
