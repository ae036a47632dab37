package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/service"
	"github.com/deskline/support-portal/internal/ticketview"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

const recentTickets = 5

// DashboardHandler serves the counters and trend chart.
type DashboardHandler struct {
	tickets *service.TicketService
	loc     *time.Location
	now     func() time.Time
}

// NewDashboardHandler constructs handler. loc is the default viewer timezone.
func NewDashboardHandler(tickets *service.TicketService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandler{tickets: tickets, loc: loc, now: time.Now}
}

// Dashboard GET /dashboard?range=WEEK|MONTH|YEAR&tz=.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	r, err := ticketview.ParseRange(c.Query("range"))
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"range": c.Query("range")})
	}
	loc, err := viewerLocation(c, h.loc)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), profile)
	if err != nil {
		return err
	}

	recent := ticketview.Sort(tickets, ticketview.DefaultSort())
	if len(recent) > recentTickets {
		recent = recent[:recentTickets]
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"range":   r,
		"summary": ticketview.Summarize(tickets),
		"chart":   ticketview.Aggregate(tickets, r, h.now(), loc),
		"recent":  ticketResponses(recent),
	}})
}
