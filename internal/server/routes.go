package server

import (
	"github.com/labstack/echo/v4"

	"github.com/ossgrants/grantgraph/backend/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Natural-language query
	apiRoutes.POST("/query", routes.QueryHandler)

	// Grant listing
	apiRoutes.GET("/grants", routes.GetGrantsHandler)
	apiRoutes.GET("/grants/:id", routes.GetGrantHandler)
	apiRoutes.GET("/filters", routes.GetFiltersHandler)

	// Analytics
	apiRoutes.GET("/stats", routes.GetStatsHandler)
	apiRoutes.GET("/analytics/trends", routes.GetFundingTrendsHandler)
	apiRoutes.GET("/analytics/institutions", routes.GetTopInstitutionsHandler)
	apiRoutes.GET("/analytics/areas", routes.GetAreaDistributionHandler)

	// Researchers
	apiRoutes.GET("/collaboration/:name", routes.GetCollaborationHandler)
	apiRoutes.GET("/researchers/suggest", routes.GetResearcherSuggestionsHandler)

	// Dataset refresh
	apiRoutes.POST("/retrieval/refresh", routes.RefreshHandler)
}
