package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-engine/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Intake         *handlers.IntakeHandler
	Hooks          *handlers.HooksHandler
	Track          *handlers.TrackHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/v1", cfg.AuthMiddleware.Handle)
	v1.Post("/intake/email", cfg.Intake.ReceiveEmail)
	v1.Post("/hooks/messages/:uid/:companyId/:ticketId/:messageId", cfg.Hooks.MessageCreated)
	v1.Post("/hooks/action-events/:id", cfg.Hooks.CompleteActionEvent)
	v1.Post("/track/visit", cfg.Track.Visit)
}
