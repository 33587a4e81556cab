package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ossgrants/grantgraph/backend/internal/server/middleware"
	"github.com/ossgrants/grantgraph/backend/pkg/logger"
)

const (
	defaultCollaborationLimit = 25
	defaultSuggestionLimit    = 10
)

// GetCollaborationHandler returns the co-grant network around a researcher.
func GetCollaborationHandler(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Missing researcher name",
		})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultCollaborationLimit
	}

	app := c.(*middleware.AppContext).App
	network, err := app.Store.CollaborationNetwork(c.Request().Context(), name, limit)
	if err != nil {
		logger.Error("[Server] Failed to build collaboration network", "name", name, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, network)
}

// GetResearcherSuggestionsHandler autocompletes researcher names.
func GetResearcherSuggestionsHandler(c echo.Context) error {
	partial := c.QueryParam("q")
	if partial == "" {
		return c.JSON(http.StatusOK, []string{})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	app := c.(*middleware.AppContext).App
	suggestions, err := app.Store.ResearcherSuggestions(c.Request().Context(), partial, limit)
	if err != nil {
		logger.Error("[Server] Failed to suggest researchers", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, suggestions)
}
