package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ossgrants/grantgraph/backend/internal/server/middleware"
	"github.com/ossgrants/grantgraph/backend/pkg/graph"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

// GetGrantsHandler lists grants with filtering, sorting and pagination.
func GetGrantsHandler(c echo.Context) error {
	type grantsErrorResponse struct {
		Message string `json:"message"`
	}

	filters := graph.GrantFilters{}
	if err := c.Bind(&filters); err != nil {
		return c.JSON(http.StatusBadRequest, grantsErrorResponse{
			Message: "Invalid query parameters",
		})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	sortBy := c.QueryParam("sort_by")
	sortDir := c.QueryParam("sort_dir")

	app := c.(*middleware.AppContext).App
	result, err := app.Store.GrantsList(c.Request().Context(), filters, page, pageSize, sortBy, sortDir)
	if err != nil {
		logger.Error("[Server] Failed to list grants", "err", err)
		return c.JSON(http.StatusInternalServerError, grantsErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, result)
}

// GetGrantHandler returns a single grant by id.
func GetGrantHandler(c echo.Context) error {
	type grantErrorResponse struct {
		Message string `json:"message"`
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, grantErrorResponse{
			Message: "Missing grant id",
		})
	}

	app := c.(*middleware.AppContext).App
	grant, err := app.Store.GrantByID(c.Request().Context(), id)
	if err != nil {
		logger.Error("[Server] Failed to get grant", "id", id, "err", err)
		return c.JSON(http.StatusInternalServerError, grantErrorResponse{
			Message: "Internal server error",
		})
	}
	if grant == nil {
		return c.JSON(http.StatusNotFound, grantErrorResponse{
			Message: "Grant not found",
		})
	}

	return c.JSON(http.StatusOK, grant)
}

// GetFiltersHandler returns the distinct filter values the dataset supports.
func GetFiltersHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	options, err := app.Store.FilterOptions(c.Request().Context())
	if err != nil {
		logger.Error("[Server] Failed to load filter options", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, options)
}
