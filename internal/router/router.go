package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusface/attendance-api/internal/config"
	"github.com/campusface/attendance-api/internal/handler"
	"github.com/campusface/attendance-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EventHandler     *handler.EventHandler
	SessionHandler   *handler.SessionHandler
	StudentHandler   *handler.StudentHandler
	ExportHandler    *handler.ExportHandler
	AnalyticsHandler *handler.AnalyticsHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Device-facing ingestion; cameras authenticate at the network layer,
	// not with instructor tokens.
	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events"))
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions"), jwtMiddleware)
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", jwtMiddleware))
	}

	if deps.ExportHandler != nil {
		deps.ExportHandler.Register(api.Group("/exports", jwtMiddleware))
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(api.Group("/analytics", jwtMiddleware))
	}
}
