package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/realtime"
	"github.com/deskline/support-portal/internal/repository"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

const commentPreviewLen = 50

// CommentService manages the conversation on a ticket.
type CommentService struct {
	comments      repository.CommentRepository
	tickets       *TicketService
	notifications *NotificationService
	dispatcher    events.Dispatcher
	realtime      realtime.Publisher
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo   repository.CommentRepository
	Tickets       *TicketService
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	Realtime      realtime.Publisher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		comments:      deps.CommentRepo,
		tickets:       deps.Tickets,
		notifications: deps.Notifications,
		dispatcher:    deps.Dispatcher,
		realtime:      deps.Realtime,
		logger:        logger,
		metrics:       deps.Metrics,
	}
}

// List returns the ticket's comments oldest first.
func (s *CommentService) List(ctx context.Context, actor *domain.Profile, ticketID string) ([]domain.Comment, error) {
	ticket, err := s.tickets.Get(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// Add posts a comment. An admin's comment notifies the requester unless the
// admin is the requester; a user's comment notifies every admin.
func (s *CommentService) Add(ctx context.Context, actor *domain.Profile, ticketID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", map[string]any{"content": "required"})
	}
	ticket, err := s.tickets.Get(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
		Content:    content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error("add comment failed", zap.String("ticket_id", ticket.ID), zap.String("actor_id", actor.ID), zap.Error(err))
		return nil, err
	}

	steps := newStepTracker("add_comment", s.logger, s.metrics, zap.String("ticket_id", ticket.ID))
	excerpt := preview(content, commentPreviewLen)
	if s.notifications != nil {
		if actor.IsAdmin() {
			if !ticket.OwnedBy(actor.ID) {
				steps.record(StepNotification, s.notifications.Notify(ctx, ticket.RequesterID, TitleAdminComment,
					fmt.Sprintf("%s comentou: %s", actor.Name, excerpt), &ticket.ID))
			}
		} else {
			steps.record(StepNotification, s.notifications.NotifyAdmins(ctx, actor.ID,
				fmt.Sprintf(titleUserCommentFmt, actor.Name),
				fmt.Sprintf("No chamado \"%s\": %s", ticket.Title, excerpt), &ticket.ID))
		}
	}
	steps.record(StepEvent, publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticket.ID,
		Actor:    events.ActorFrom(actor),
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			Number:      ticket.Number,
			Title:       ticket.Title,
			RequesterID: ticket.RequesterID,
			Preview:     excerpt,
		},
	}))
	if s.realtime != nil {
		steps.record(StepRealtime, s.realtime.Publish(ctx, realtime.Change{
			Table:    realtime.TableComments,
			Op:       realtime.OpInsert,
			RowID:    comment.ID,
			TicketID: ticket.ID,
		}))
	}
	return comment, steps.err()
}
