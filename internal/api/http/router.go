package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/registration-service/internal/api/http/handlers"
	"github.com/spec-kit/registration-service/internal/auth"
	"github.com/spec-kit/registration-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Registrations  *handlers.RegistrationHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	public := app.Group("/registration")
	public.Post("/", cfg.Registrations.Create)
	public.Get("/:id", cfg.Registrations.Get)
	public.Put("/:id", cfg.Registrations.Update)
	public.Delete("/:id", cfg.Registrations.Delete)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)

	protected := admin.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/registrations", cfg.Admin.List)
	protected.Get("/registrations/:id", cfg.Admin.Get)
	protected.Patch("/registrations/:id/status", cfg.Admin.UpdateStatus)
	protected.Put("/registrations/:id", cfg.Admin.Update)
	protected.Delete("/registrations/:id", cfg.Admin.Delete)
	protected.Get("/stats", cfg.Admin.Stats)
	protected.Get("/export", cfg.Admin.Export)
}
