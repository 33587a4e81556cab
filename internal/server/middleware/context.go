package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/ossgrants/grantgraph/backend/pkg/graph"
	"github.com/ossgrants/grantgraph/backend/pkg/query"
)

// App holds the shared services every handler reaches through the request
// context.
type App struct {
	Store     *graph.Store
	Processor *query.Processor
	Queue     *amqp091.Channel
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
