package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ossgrants/grantgraph/backend/internal/server/middleware"
	"github.com/ossgrants/grantgraph/backend/pkg/graph"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

const defaultInstitutionLimit = 10

// GetStatsHandler returns dataset-wide grant and funding aggregates.
func GetStatsHandler(c echo.Context) error {
	filters := graph.GrantFilters{}
	if err := c.Bind(&filters); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid query parameters",
		})
	}

	app := c.(*middleware.AppContext).App
	stats, err := app.Store.Stats(c.Request().Context(), filters)
	if err != nil {
		logger.Error("[Server] Failed to compute stats", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, stats)
}

// GetFundingTrendsHandler returns funding totals per year.
func GetFundingTrendsHandler(c echo.Context) error {
	filters := graph.GrantFilters{}
	if err := c.Bind(&filters); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid query parameters",
		})
	}

	app := c.(*middleware.AppContext).App
	trends, err := app.Store.FundingTrends(c.Request().Context(), filters)
	if err != nil {
		logger.Error("[Server] Failed to compute funding trends", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, trends)
}

// GetTopInstitutionsHandler returns institutions ranked by funding received.
func GetTopInstitutionsHandler(c echo.Context) error {
	filters := graph.GrantFilters{}
	if err := c.Bind(&filters); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid query parameters",
		})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultInstitutionLimit
	}

	app := c.(*middleware.AppContext).App
	institutions, err := app.Store.TopInstitutions(c.Request().Context(), filters, limit)
	if err != nil {
		logger.Error("[Server] Failed to rank institutions", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, institutions)
}

// GetAreaDistributionHandler returns grant counts per research area.
func GetAreaDistributionHandler(c echo.Context) error {
	filters := graph.GrantFilters{}
	if err := c.Bind(&filters); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Invalid query parameters",
		})
	}

	app := c.(*middleware.AppContext).App
	areas, err := app.Store.AreaDistribution(c.Request().Context(), filters)
	if err != nil {
		logger.Error("[Server] Failed to compute area distribution", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, areas)
}
