package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/dto"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/service"
	"github.com/deskline/support-portal/internal/spreadsheet"
	"github.com/deskline/support-portal/internal/ticketview"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	loc     *time.Location
	now     func() time.Time
}

// NewTicketsHandler constructs handler. loc is the default viewer timezone.
func NewTicketsHandler(ticketService *service.TicketService, loc *time.Location) *TicketsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TicketsHandler{service: ticketService, loc: loc, now: time.Now}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	snapshot, visible, _, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Tickets:    ticketResponses(visible),
		Total:      len(snapshot),
		Categories: ticketview.Categories(snapshot),
		Requesters: ticketview.Requesters(snapshot),
	}})
}

// Board GET /tickets/board. Lanes hold the filtered, sorted tickets.
func (h *TicketsHandler) Board(c *fiber.Ctx) error {
	_, visible, _, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": boardResponse(ticketview.Bucketize(visible))})
}

// Move POST /tickets/board/move. Dropping a card on its own lane or on an
// unknown lane changes nothing.
func (h *TicketsHandler) Move(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	change, ok := ticketview.Drop(req.TicketID, req.From, req.To)
	if !ok {
		return c.JSON(fiber.Map{"data": fiber.Map{"moved": false}})
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), profile, change.TicketID, change.Status)
	if ticket == nil {
		return err
	}
	return reply(c, http.StatusOK, fiber.Map{"moved": true, "ticket": ticketResponse(ticket)}, err)
}

// Export GET /tickets/export.xlsx streams the filtered, sorted list as a
// workbook.
func (h *TicketsHandler) Export(c *fiber.Ctx) error {
	_, visible, loc, err := h.view(c)
	if err != nil {
		return err
	}
	rows, err := ticketview.Project(visible, loc)
	if errors.Is(err, ticketview.ErrNothingToExport) {
		return apperrors.NewDomainError("NOTHING_TO_EXPORT", ticketview.NothingToExportMessage, http.StatusUnprocessableEntity, nil)
	}
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := spreadsheet.WriteXLSX(&buf, rows); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Attachment(ticketview.ExportFileName(h.now().In(loc)))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), profile, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Attachments: req.Attachments,
	})
	if ticket == nil {
		return err
	}
	return reply(c, http.StatusCreated, ticketResponse(ticket), err)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), profile, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Edit(c.UserContext(), profile, c.Params("id"), service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Status:      req.Status,
		Attachments: req.Attachments,
	})
	if ticket == nil {
		return err
	}
	return reply(c, http.StatusOK, ticketResponse(ticket), err)
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	err = h.service.Delete(c.UserContext(), profile, id)
	if err == nil {
		return c.SendStatus(http.StatusNoContent)
	}
	return reply(c, http.StatusOK, fiber.Map{"id": id}, err)
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), profile, c.Params("id"), req.Status)
	if ticket == nil {
		return err
	}
	return reply(c, http.StatusOK, ticketResponse(ticket), err)
}

// Audit GET /tickets/:id/audit.
func (h *TicketsHandler) Audit(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	entries, err := h.service.Audit(c.UserContext(), profile, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:           e.ID,
			TicketNumber: e.TicketNumber,
			ActorID:      e.ActorID,
			ActorName:    e.ActorName,
			Action:       e.Action,
			ActionLabel:  ticketview.AuditActionLabel(e.Action),
			Details:      e.Details,
			CreatedAt:    e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// view loads the caller's tickets and applies the query's filter and sort.
// It returns the whole snapshot, the visible list and the viewer location.
func (h *TicketsHandler) view(c *fiber.Ctx) ([]domain.Ticket, []domain.Ticket, *time.Location, error) {
	profile, err := currentProfile(c)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := viewerLocation(c, h.loc)
	if err != nil {
		return nil, nil, nil, err
	}
	criteria, err := parseCriteria(c)
	if err != nil {
		return nil, nil, nil, err
	}
	sortState, err := parseSort(c)
	if err != nil {
		return nil, nil, nil, err
	}
	snapshot, err := h.service.List(c.UserContext(), profile)
	if err != nil {
		return nil, nil, nil, err
	}
	return snapshot, ticketview.List(snapshot, criteria, sortState, loc), loc, nil
}

func parseCriteria(c *fiber.Ctx) (ticketview.Criteria, error) {
	criteria := ticketview.DefaultCriteria()
	criteria.Query = strings.TrimSpace(c.Query("q"))
	if v := c.Query("status"); v != "" {
		criteria.Status = v
	}
	if v := c.Query("category"); v != "" {
		criteria.Category = v
	}
	if v := c.Query("requester"); v != "" {
		criteria.Requester = v
	}
	field, err := ticketview.ParseDateField(c.Query("date_field"))
	if err != nil {
		return criteria, apperrors.NewValidationError(err.Error(), map[string]any{"date_field": c.Query("date_field")})
	}
	criteria.DateField = field
	date, err := ticketview.ParseDate(c.Query("date"))
	if err != nil {
		return criteria, apperrors.NewValidationError(err.Error(), map[string]any{"date": c.Query("date")})
	}
	criteria.Date = date
	return criteria, nil
}

func parseSort(c *fiber.Ctx) (ticketview.SortState, error) {
	field, err := ticketview.ParseSortField(c.Query("sort"))
	if err != nil {
		return ticketview.SortState{}, apperrors.NewValidationError(err.Error(), map[string]any{"sort": c.Query("sort")})
	}
	dir, err := ticketview.ParseDirection(c.Query("dir"))
	if err != nil {
		return ticketview.SortState{}, apperrors.NewValidationError(err.Error(), map[string]any{"dir": c.Query("dir")})
	}
	return ticketview.SortState{Field: field, Direction: dir}, nil
}
