package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ossgrants/grantgraph/backend/internal/server/middleware"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
	"github.com/ossgrants/grantgraph/backend/pkg/query"
)

// QueryHandler answers a natural-language question against the grants graph.
func QueryHandler(c echo.Context) error {
	type queryBody struct {
		Question         string `json:"question" validate:"required"`
		IncludeWebSearch bool   `json:"include_web_search"`
	}

	type queryErrorResponse struct {
		Message string `json:"message"`
		Cypher  string `json:"cypher,omitempty"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryErrorResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryErrorResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	response, err := app.Processor.Process(ctx, data.Question, data.IncludeWebSearch)
	if err != nil {
		execErr := &query.ExecutionError{}
		if errors.As(err, &execErr) {
			logger.Warn("[Server] Query execution failed", "cypher", execErr.Cypher, "err", execErr.Err)
			return c.JSON(http.StatusUnprocessableEntity, queryErrorResponse{
				Message: "The generated query could not be executed against the graph",
				Cypher:  execErr.Cypher,
			})
		}
		logger.Error("[Server] Query processing failed", "err", err)
		return c.JSON(http.StatusInternalServerError, queryErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, response)
}
