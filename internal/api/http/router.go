package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/complaint-tickets/internal/api/http/handlers"
	"github.com/spec-kit/complaint-tickets/internal/auth"
	"github.com/spec-kit/complaint-tickets/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Batches        *handlers.BatchesHandler
	Tickets        *handlers.TicketsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	batches := app.Group("/batches", cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleOperator))
	batches.Post("", cfg.Batches.Submit)
	batches.Post("/csv", cfg.Batches.SubmitCSV)

	app.Get("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleOperator, auth.RoleViewer), cfg.Tickets.ListTickets)
}
