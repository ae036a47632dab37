package portal

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/realtime"
	"github.com/deskline/support-portal/internal/ticketview"
)

// Backend is the remote side of a session.
type Backend interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error)
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, notificationID string) error
}

// Controller owns a session State and applies remote operations to it.
// Optimistic changes are rolled back to the pre-change snapshot when the
// remote write fails.
type Controller struct {
	mu       sync.Mutex
	state    State
	backend  Backend
	logger   *zap.Logger
	onChange func(State)
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for remote failures.
func WithLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// OnChange registers a callback invoked with every new state.
func OnChange(fn func(State)) ControllerOption {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a controller starting from initial.
func NewController(backend Backend, initial State, opts ...ControllerOption) *Controller {
	c := &Controller{state: initial, backend: backend, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a local action.
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	c.state = Reduce(c.state, a)
	s := c.state
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(s)
	}
	return s
}

// Refresh replaces the ticket snapshot with a fresh one from the backend.
func (c *Controller) Refresh(ctx context.Context) error {
	tickets, err := c.backend.ListTickets(ctx)
	if err != nil {
		c.logger.Error("refresh tickets failed", zap.Error(err))
		return err
	}
	c.Dispatch(TicketsLoaded{Tickets: tickets})
	return nil
}

// RefreshNotifications replaces the notification snapshot.
func (c *Controller) RefreshNotifications(ctx context.Context) error {
	notifications, err := c.backend.ListNotifications(ctx)
	if err != nil {
		c.logger.Error("refresh notifications failed", zap.Error(err))
		return err
	}
	c.Dispatch(NotificationsLoaded{Notifications: notifications})
	return nil
}

// ChangeStatus patches the ticket locally, then reconciles with the copy the
// backend returns. On failure the previous status is restored.
func (c *Controller) ChangeStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	previous, ok := c.State().Ticket(ticketID)
	c.Dispatch(TicketStatusPatched{TicketID: ticketID, Status: status})

	updated, err := c.backend.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		if ok {
			c.Dispatch(TicketReplaced{Ticket: previous})
		}
		c.logger.Error("status update failed", zap.String("ticket_id", ticketID), zap.Error(err))
		return err
	}
	if updated != nil {
		c.Dispatch(TicketReplaced{Ticket: *updated})
	}
	return nil
}

// Move turns a board drop into a status change. Drops that do not request a
// change are ignored.
func (c *Controller) Move(ctx context.Context, ticketID string, from, to domain.TicketStatus) error {
	change, ok := ticketview.Drop(ticketID, from, to)
	if !ok {
		return nil
	}
	return c.ChangeStatus(ctx, change.TicketID, change.Status)
}

// MarkRead marks one notification read.
func (c *Controller) MarkRead(ctx context.Context, notificationID string) error {
	return c.optimistic(NotificationMarkedRead{NotificationID: notificationID}, func() error {
		return c.backend.MarkNotificationRead(ctx, notificationID)
	})
}

// MarkAllRead marks every notification read.
func (c *Controller) MarkAllRead(ctx context.Context) error {
	return c.optimistic(NotificationsAllRead{}, func() error {
		return c.backend.MarkAllNotificationsRead(ctx)
	})
}

// DeleteNotification removes a notification.
func (c *Controller) DeleteNotification(ctx context.Context, notificationID string) error {
	return c.optimistic(NotificationRemoved{NotificationID: notificationID}, func() error {
		return c.backend.DeleteNotification(ctx, notificationID)
	})
}

func (c *Controller) optimistic(a Action, write func() error) error {
	snapshot := c.State().Notifications
	c.Dispatch(a)
	if err := write(); err != nil {
		c.Dispatch(NotificationsRestored{Notifications: snapshot})
		c.logger.Error("notification update failed", zap.Error(err))
		return err
	}
	return nil
}

// Watch refreshes on every change received until ctx is done or changes is
// closed. Ticket and comment changes reload tickets; notification changes
// reload the inbox.
func (c *Controller) Watch(ctx context.Context, changes <-chan realtime.Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			var err error
			if change.Table == realtime.TableNotifications {
				err = c.RefreshNotifications(ctx)
			} else {
				err = c.Refresh(ctx)
			}
			if err != nil {
				c.logger.Warn("refresh after change failed", zap.String("table", string(change.Table)), zap.Error(err))
			}
		}
	}
}
