package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/realtime"
	"github.com/deskline/support-portal/internal/repository"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Each mutation is a primary
// store write followed by independent secondary writes (audit entry, inbox
// notifications, domain event, realtime change). A failed primary write
// aborts the operation; failed secondary writes are reported through
// *PartialFailure next to the persisted ticket.
type TicketService struct {
	tickets       repository.TicketRepository
	audit         repository.AuditLogRepository
	notifications *NotificationService
	dispatcher    events.Dispatcher
	realtime      realtime.Publisher
	logger        *zap.Logger
	metrics       *observability.Metrics
	policy        config.TicketsConfig
	now           func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	AuditRepo     repository.AuditLogRepository
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Realtime      realtime.Publisher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Policy        config.TicketsConfig
	Clock         func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    string
	Attachments []string
}

// TicketUpdateInput lists the fields an edit replaces. Nil fields are kept.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Category    *string
	Status      *domain.TicketStatus
	Attachments []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		audit:         deps.AuditRepo,
		notifications: deps.Notifications,
		dispatcher:    deps.Dispatcher,
		realtime:      deps.Realtime,
		logger:        logger,
		metrics:       deps.Metrics,
		policy:        deps.Policy,
		now:           clock,
	}
}

// Create opens a ticket for actor.
func (s *TicketService) Create(ctx context.Context, actor *domain.Profile, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Priority:    input.Priority,
		Category:    strings.TrimSpace(input.Category),
		Status:      domain.TicketStatusOpen,
		RequesterID: actor.ID,
		Requester:   actor.Name,
		Attachments: input.Attachments,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityLow
	}
	if ticket.Category == "" {
		ticket.Category = s.defaultCategory()
	}
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.logger.Error("create ticket failed", zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, err
	}

	steps := newStepTracker("create_ticket", s.logger, s.metrics, zap.String("ticket_id", ticket.ID))
	steps.record(StepAudit, s.recordAudit(ctx, actor, ticket, domain.AuditActionCreated,
		fmt.Sprintf("Chamado criado com prioridade %s", ticket.Priority)))
	if s.notifications != nil {
		steps.record(StepNotification, s.notifications.NotifyAdmins(ctx, actor.ID, TitleTicketCreated,
			fmt.Sprintf("%s abriu um novo chamado: %s", actor.Name, ticket.Title), &ticket.ID))
	}
	steps.record(StepEvent, s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketCreatedPayload{
			Number:      ticket.Number,
			Title:       ticket.Title,
			Description: ticket.Description,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			RequesterID: ticket.RequesterID,
			Requester:   ticket.Requester,
		},
	}))
	steps.record(StepRealtime, s.publishChange(ctx, realtime.OpInsert, ticket.ID))
	return ticket, steps.err()
}

// Edit replaces ticket details. The requester and admins may edit; only
// admins may change the status, and a changed status is recorded as a
// transition.
func (s *TicketService) Edit(ctx context.Context, actor *domain.Profile, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadOwnedOrAdmin(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Category != nil {
		ticket.Category = strings.TrimSpace(*input.Category)
	}
	if input.Attachments != nil {
		ticket.Attachments = input.Attachments
	}
	oldStatus := ticket.Status
	if input.Status != nil && *input.Status != ticket.Status {
		if !actor.IsAdmin() {
			return nil, apperrors.NewForbidden("only administrators can change ticket status")
		}
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		s.applyStatus(ticket, *input.Status)
	}
	if err := validateTicket(ticket); err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		s.logger.Error("edit ticket failed", zap.String("ticket_id", ticket.ID), zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, err
	}

	steps := newStepTracker("edit_ticket", s.logger, s.metrics, zap.String("ticket_id", ticket.ID))
	steps.record(StepAudit, s.recordAudit(ctx, actor, ticket, domain.AuditActionEdited, "Detalhes do chamado editados"))
	steps.record(StepEvent, s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEdited,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
	}))
	if ticket.Status != oldStatus {
		s.statusChanged(ctx, steps, actor, ticket, oldStatus)
	}
	steps.record(StepRealtime, s.publishChange(ctx, realtime.OpUpdate, ticket.ID))
	return ticket, steps.err()
}

// Delete removes a ticket with its comments, audit trail and notifications.
func (s *TicketService) Delete(ctx context.Context, actor *domain.Profile, ticketID string) error {
	ticket, err := s.loadOwnedOrAdmin(ctx, actor, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		s.logger.Error("delete ticket failed", zap.String("ticket_id", ticket.ID), zap.String("actor_id", actor.ID), zap.Error(err))
		return err
	}

	steps := newStepTracker("delete_ticket", s.logger, s.metrics, zap.String("ticket_id", ticket.ID))
	steps.record(StepEvent, s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
	}))
	steps.record(StepRealtime, s.publishChange(ctx, realtime.OpDelete, ticket.ID))
	return steps.err()
}

// UpdateStatus moves a ticket to status. Only admins may change status.
// The new status and resolution timestamp are persisted first; the audit
// entry, the requester notification, the e-mail alert event and the
// realtime change follow in that order.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Profile, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can change ticket status")
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	s.applyStatus(ticket, status)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		s.logger.Error("update status failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("actor_id", actor.ID),
			zap.String("status", string(status)),
			zap.Error(err))
		return nil, err
	}

	steps := newStepTracker("update_status", s.logger, s.metrics, zap.String("ticket_id", ticket.ID), zap.String("actor_id", actor.ID))
	s.statusChanged(ctx, steps, actor, ticket, oldStatus)
	steps.record(StepRealtime, s.publishChange(ctx, realtime.OpUpdate, ticket.ID))
	return ticket, steps.err()
}

// statusChanged runs the writes that follow a persisted transition from
// oldStatus: the STATUS_CHANGE entry, the requester notification and the
// e-mail alert event.
func (s *TicketService) statusChanged(ctx context.Context, steps *stepTracker, actor *domain.Profile, ticket *domain.Ticket, oldStatus domain.TicketStatus) {
	status := ticket.Status
	steps.record(StepAudit, s.recordAudit(ctx, actor, ticket, domain.AuditActionStatusChange,
		fmt.Sprintf("Status alterado para %s", status)))
	if s.notifications != nil && !ticket.OwnedBy(actor.ID) {
		steps.record(StepNotification, s.notifications.Notify(ctx, ticket.RequesterID, TitleStatusUpdated,
			fmt.Sprintf("Seu chamado \"%s\" mudou para %s por %s.", ticket.Title, status, actor.Name), &ticket.ID))
	}
	steps.record(StepEvent, s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.TicketStatusChangedPayload{
			Number:      ticket.Number,
			Title:       ticket.Title,
			RequesterID: ticket.RequesterID,
			OldStatus:   oldStatus,
			NewStatus:   status,
		},
	}))
}

// List returns every ticket for admins and the actor's own tickets
// otherwise, newest first.
func (s *TicketService) List(ctx context.Context, actor *domain.Profile) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.TicketFilter{}
	if !actor.IsAdmin() {
		filter.RequesterID = &actor.ID
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// Get returns a ticket visible to actor.
func (s *TicketService) Get(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	return s.loadOwnedOrAdmin(ctx, actor, ticketID)
}

// Audit returns the ticket history, newest first.
func (s *TicketService) Audit(ctx context.Context, actor *domain.Profile, ticketID string) ([]domain.AuditLogEntry, error) {
	ticket, err := s.loadOwnedOrAdmin(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []domain.AuditLogEntry{}, nil
	}
	entries, err := s.audit.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.AuditLogEntry{}
	}
	return entries, nil
}

// applyStatus sets the status and maintains the resolution timestamp.
// Entering RESOLVED stamps the current time; leaving it keeps the previous
// stamp unless the clear-on-reopen policy is on.
func (s *TicketService) applyStatus(ticket *domain.Ticket, status domain.TicketStatus) {
	switch {
	case status == domain.TicketStatusResolved && ticket.Status != domain.TicketStatusResolved:
		now := s.now()
		ticket.ResolvedAt = &now
	case status != domain.TicketStatusResolved && s.policy.ClearResolvedOnReopen:
		ticket.ResolvedAt = nil
	}
	ticket.Status = status
}

func (s *TicketService) defaultCategory() string {
	if len(s.policy.Categories) > 0 {
		return s.policy.Categories[0]
	}
	return ""
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(ticketID); err != nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) loadOwnedOrAdmin(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !ticket.OwnedBy(actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) recordAudit(ctx context.Context, actor *domain.Profile, ticket *domain.Ticket, action domain.AuditAction, details string) error {
	if s.audit == nil {
		return nil
	}
	entry := &domain.AuditLogEntry{
		TicketID:     ticket.ID,
		TicketNumber: ticket.Number,
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       action,
		Details:      details,
	}
	return s.audit.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) error {
	return publishEvent(ctx, s.dispatcher, event)
}

func (s *TicketService) publishChange(ctx context.Context, op realtime.Op, ticketID string) error {
	if s.realtime == nil {
		return nil
	}
	return s.realtime.Publish(ctx, realtime.Change{Table: realtime.TableTickets, Op: op, RowID: ticketID, TicketID: ticketID})
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) error {
	if dispatcher == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return dispatcher.Publish(ctx, event)
}

func validateTicket(ticket *domain.Ticket) error {
	details := map[string]any{}
	if ticket.Title == "" {
		details["title"] = "required"
	}
	if ticket.Description == "" {
		details["description"] = "required"
	}
	if !ticket.Priority.Valid() {
		details["priority"] = "must be one of LOW, MEDIUM, HIGH, CRITICAL"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket", details)
	}
	return nil
}

// preview returns the first max runes of body followed by an ellipsis.
func preview(body string, max int) string {
	runes := []rune(strings.TrimSpace(body))
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes) + "..."
}
