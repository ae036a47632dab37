package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/dto"
	"github.com/deskline/support-portal/internal/auth"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/service"
	"github.com/deskline/support-portal/internal/ticketview"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

func currentProfile(c *fiber.Ctx) (*domain.Profile, error) {
	profile, ok := auth.ProfileFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return profile, nil
}

// reply writes data with status. A *service.PartialFailure keeps the
// success status and lists the failed steps under "warnings"; any other
// error is returned to the error middleware.
func reply(c *fiber.Ctx, status int, data any, err error) error {
	body := fiber.Map{"data": data}
	if err != nil {
		partial, ok := service.AsPartial(err)
		if !ok {
			return err
		}
		body["warnings"] = partial.Steps()
	}
	return c.Status(status).JSON(body)
}

// viewerLocation resolves the tz query parameter, falling back to def.
func viewerLocation(c *fiber.Ctx, def *time.Location) (*time.Location, error) {
	name := c.Query("tz")
	if name == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid timezone", map[string]any{"tz": name})
	}
	return loc, nil
}

func ticketResponse(t *domain.Ticket) dto.TicketResponse {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return dto.TicketResponse{
		ID:          t.ID,
		Number:      t.Number,
		Title:       t.Title,
		Description: t.Description,
		Requester:   t.Requester,
		RequesterID: t.RequesterID,
		Priority:    t.Priority,
		Status:      t.Status,
		Category:    t.Category,
		Attachments: attachments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ResolvedAt:  t.ResolvedAt,
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	out := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, ticketResponse(&tickets[i]))
	}
	return out
}

func boardResponse(board ticketview.Board) []dto.LaneResponse {
	lanes := make([]dto.LaneResponse, 0, len(board.Lanes))
	for _, lane := range board.Lanes {
		lanes = append(lanes, dto.LaneResponse{
			Status:  lane.Status,
			Label:   lane.Label,
			Tickets: ticketResponses(lane.Tickets),
		})
	}
	return lanes
}

func profileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}
