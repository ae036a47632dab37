package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/http/handlers"
	"github.com/deskline/support-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Attachments    *handlers.AttachmentsHandler
	Dashboard      *handlers.DashboardHandler
	Notifications  *handlers.NotificationsHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.AuthMiddleware
	// FilesDir is served under /files when set.
	FilesDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	if cfg.FilesDir != "" {
		app.Static("/files", cfg.FilesDir, fiber.Static{Browse: false})
	}

	// Authentication is attached per prefix so unmatched paths still fall
	// through to the 404 handler.
	authn := cfg.AuthMiddleware.Handle
	app.Get("/me", authn, cfg.Users.Me)

	tickets := app.Group("/tickets", authn)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/board", cfg.Tickets.Board)
	tickets.Post("/board/move", cfg.Tickets.Move)
	tickets.Get("/export.xlsx", cfg.Tickets.Export)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Get("/:id/audit", cfg.Tickets.Audit)
	tickets.Get("/:id/comments", cfg.Comments.List)
	tickets.Post("/:id/comments", cfg.Comments.Add)

	app.Post("/attachments", authn, cfg.Attachments.Upload)
	app.Get("/dashboard", authn, cfg.Dashboard.Dashboard)

	notifications := app.Group("/notifications", authn)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	if cfg.Events != nil {
		app.Get("/events", authn, cfg.Events.Stream)
	}

	users := app.Group("/users", authn, auth.RequireAdmin())
	users.Get("/", cfg.Users.List)
	users.Put("/:id", cfg.Users.Update)
}
