package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ossgrants/grantgraph/backend/internal/queue"
	"github.com/ossgrants/grantgraph/backend/internal/server/middleware"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// RefreshHandler enqueues a full dataset refresh for the worker.
func RefreshHandler(c echo.Context) error {
	type refreshResponse struct {
		Message       string `json:"message"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, refreshResponse{
			Message: "Refresh queue is not configured",
		})
	}

	correlationID, err := queue.PublishRefresh(app.Queue, "manual refresh")
	if err != nil {
		logger.Error("[Server] Failed to enqueue refresh", "err", err)
		return c.JSON(http.StatusInternalServerError, refreshResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, refreshResponse{
		Message:       "Refresh queued",
		CorrelationID: correlationID,
	})
}
