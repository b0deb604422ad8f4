package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/api/http/handlers"
	"github.com/spec-kit/applicant-tracker/internal/api/http/views"
	"github.com/spec-kit/applicant-tracker/internal/auth"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/observability"
)

// AppConfig tunes the fiber application.
type AppConfig struct {
	Name           string
	BodyLimit      int
	RequestTimeout time.Duration
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// New builds the fiber application with views and global middlewares.
func New(cfg AppConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             bodyLimit,
		Views:                 views.NewEngine(),
		ViewsLayout:           views.Layout,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.RequestTimeout)
	return app
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Pages          *handlers.PagesHandler
	Auth           *handlers.AuthHandler
	Positions      *handlers.PositionsHandler
	Applications   *handlers.ApplicationsHandler
	Candidates     *handlers.CandidatesHandler
	Resumes        *handlers.ResumesHandler
	AuthMiddleware *auth.AuthMiddleware
	IntakeLimiter  fiber.Handler
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	intake := cfg.IntakeLimiter
	if intake == nil {
		intake = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}
	if cfg.Resumes != nil {
		app.Get("/resumes/:token", cfg.Resumes.Download)
	}

	// public pages
	app.Get("/", cfg.Pages.Index)
	app.Get("/apply/:positionId", cfg.Pages.ApplyForm)
	app.Post("/apply/:positionId", intake, cfg.Pages.Apply)
	app.Get(auth.LoginPath, cfg.Pages.LoginForm)
	app.Post(auth.LoginPath, cfg.Pages.Login)
	app.Post("/logout", cfg.Pages.Logout)

	staff := auth.RequireRole(domain.RoleRecruiter, domain.RoleAreaManager)

	board := app.Group("/dashboard", cfg.AuthMiddleware.HandlePage, staff)
	board.Get("", cfg.Pages.Dashboard)
	board.Post("/candidates/:candidateId/stage", cfg.Pages.MoveCandidate)
	board.Get("/candidate/:candidateId", cfg.Pages.Candidate)
	board.Post("/candidate/:candidateId/comments", cfg.Pages.AddComment)

	positionsAdmin := board.Group("/positions", auth.RequireRecruiter())
	positionsAdmin.Get("", cfg.Pages.Positions)
	positionsAdmin.Post("", cfg.Pages.CreatePosition)
	positionsAdmin.Post("/:positionId/toggle", cfg.Pages.TogglePosition)

	api := app.Group("/api")
	api.Get("/positions", cfg.Positions.ListOpen)
	api.Get("/positions/:id", cfg.Positions.Get)
	api.Post("/positions/:positionId/applications", intake, cfg.Applications.Submit)
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, staff)
	protected.Get("/me", cfg.Auth.Me)
	protected.Get("/candidates", cfg.Candidates.List)
	protected.Get("/candidates/:id", cfg.Candidates.Get)
	protected.Patch("/candidates/:id/stage", cfg.Candidates.SetStage)
	protected.Get("/candidates/:id/history", cfg.Candidates.History)
	protected.Get("/candidates/:id/comments", cfg.Candidates.Comments)
	protected.Post("/candidates/:id/comments", cfg.Candidates.AddComment)
	protected.Get("/candidates/:id/resume-url", cfg.Candidates.ResumeURL)

	admin := protected.Group("/admin", auth.RequireRecruiter())
	admin.Get("/positions", cfg.Positions.ListAll)
	admin.Post("/positions", cfg.Positions.Create)
	admin.Post("/positions/:id/toggle", cfg.Positions.Toggle)
	admin.Get("/managers", cfg.Positions.Managers)
}
