package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/realtime"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// ChangeFeed is the realtime subscription side of the broker.
type ChangeFeed interface {
	Subscribe(ctx context.Context, channels ...string) (*realtime.Subscription, error)
	TicketsChannel() string
	NotificationsChannel(userID string) string
	CommentsChannel(ticketID string) string
}

// TicketAccess checks that a caller may see a ticket.
type TicketAccess interface {
	Get(ctx context.Context, actor *domain.Profile, ticketID string) (*domain.Ticket, error)
}

// EventsHandler streams realtime changes as server-sent events.
type EventsHandler struct {
	feed      ChangeFeed
	tickets   TicketAccess
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewEventsHandler constructs handler.
func NewEventsHandler(feed ChangeFeed, tickets TicketAccess, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{feed: feed, tickets: tickets, logger: logger, heartbeat: 25 * time.Second}
}

// Stream GET /events[?ticket=<id>]. The caller receives ticket changes and
// their own notification changes; with ticket set, also that ticket's
// comment changes.
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if h.feed == nil {
		return apperrors.NewUnavailable("realtime feed unavailable", errors.New("realtime feed not configured"))
	}
	ticketID := c.Query("ticket")
	if ticketID != "" {
		if _, err := h.tickets.Get(c.UserContext(), profile, ticketID); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.feed.Subscribe(ctx, h.channels(profile, ticketID)...)
	if err != nil {
		cancel()
		h.logger.Error("realtime subscribe failed", zap.String("user_id", profile.ID), zap.Error(err))
		return apperrors.NewUnavailable("realtime feed unavailable", err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	userID := profile.ID
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer sub.Close()
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		if _, err := w.WriteString(": connected\n\n"); err != nil || w.Flush() != nil {
			return
		}
		for {
			select {
			case change, ok := <-sub.C:
				if !ok {
					return
				}
				if err := writeEvent(w, change); err != nil {
					h.logger.Debug("event stream closed", zap.String("user_id", userID), zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil || w.Flush() != nil {
					return
				}
			}
		}
	})
	return nil
}

func (h *EventsHandler) channels(profile *domain.Profile, ticketID string) []string {
	channels := []string{h.feed.TicketsChannel(), h.feed.NotificationsChannel(profile.ID)}
	if ticketID != "" {
		channels = append(channels, h.feed.CommentsChannel(ticketID))
	}
	return channels
}

// writeEvent frames change as one SSE event named after its table.
func writeEvent(w *bufio.Writer, change realtime.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Table, payload); err != nil {
		return err
	}
	return w.Flush()
}
