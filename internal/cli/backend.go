package cli

import (
	"context"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/service"
)

// serviceBackend runs a portal session for one profile directly against
// the services, without going through HTTP.
type serviceBackend struct {
	actor         *domain.Profile
	tickets       *service.TicketService
	notifications *service.NotificationService
}

func (b *serviceBackend) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return b.tickets.List(ctx, b.actor)
}

// UpdateStatus reports a partially applied change as success; the ticket
// row was written.
func (b *serviceBackend) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := b.tickets.UpdateStatus(ctx, b.actor, ticketID, status)
	if _, partial := service.AsPartial(err); partial && ticket != nil {
		return ticket, nil
	}
	return ticket, err
}

func (b *serviceBackend) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	return b.notifications.List(ctx, b.actor.ID)
}

func (b *serviceBackend) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return b.notifications.MarkRead(ctx, b.actor.ID, notificationID)
}

func (b *serviceBackend) MarkAllNotificationsRead(ctx context.Context) error {
	return b.notifications.MarkAllRead(ctx, b.actor.ID)
}

func (b *serviceBackend) DeleteNotification(ctx context.Context, notificationID string) error {
	return b.notifications.Delete(ctx, b.actor.ID, notificationID)
}
