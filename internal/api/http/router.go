package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cityaid-service/internal/api/http/handlers"
	"github.com/spec-kit/cityaid-service/internal/auth"
	"github.com/spec-kit/cityaid-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Cases          *handlers.CasesHandler
	Files          *handlers.FilesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	cases := app.Group("/cases", cfg.AuthMiddleware.Handle)
	cases.Post("", auth.RequireTeam(domain.TeamAlpha, domain.TeamBeta), cfg.Cases.CreateCase)
	cases.Get("", cfg.Cases.ListCases)
	cases.Get("/:id", cfg.Cases.GetCase)
	cases.Patch("/:id", cfg.Cases.UpdateCase)
	cases.Post("/:id/submit", cfg.Cases.SubmitCase)
	cases.Post("/:id/approve", auth.RequireTeam(domain.TeamFinance, domain.TeamPMO), cfg.Cases.ApproveCase)
	cases.Post("/:id/reject", auth.RequireTeam(domain.TeamFinance, domain.TeamPMO), cfg.Cases.RejectCase)
	cases.Post("/:id/retrigger", auth.RequireTeam(domain.TeamPMO), cfg.Cases.RetriggerCase)

	cases.Post("/:id/files", cfg.Files.AttachFile)
	cases.Get("/:id/files", cfg.Files.ListFiles)

	files := app.Group("/files", cfg.AuthMiddleware.Handle)
	files.Patch("/:fileID", cfg.Files.UpdateFile)
}
