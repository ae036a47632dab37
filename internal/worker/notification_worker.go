package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/service"
)

// Dependencies lists the event consumers started with the service.
type Dependencies struct {
	Dispatcher    events.Dispatcher
	Notifications *service.NotificationService
	// Stream receives every domain event when set, e.g. a Kafka sink.
	Stream events.Sink
	Logger *zap.Logger
}

// StartNotificationWorker registers the e-mail alert handlers and forwards
// events to the stream.
func StartNotificationWorker(deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Notifications != nil {
		deps.Notifications.RegisterHandlers()
	}
	if deps.Dispatcher != nil && deps.Stream != nil {
		events.Forward(deps.Dispatcher, loggedSink{sink: deps.Stream, logger: logger})
		logger.Info("forwarding ticket events to stream")
	}
}

type loggedSink struct {
	sink   events.Sink
	logger *zap.Logger
}

func (s loggedSink) Write(ctx context.Context, event events.Event) error {
	if err := s.sink.Write(ctx, event); err != nil {
		s.logger.Error("event stream write failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
		return err
	}
	return nil
}
