// Package bootstrap assembles the repositories, services and event plumbing
// shared by the API server and the admin CLI.
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/realtime"
	"github.com/deskline/support-portal/internal/repository"
	"github.com/deskline/support-portal/internal/service"
	"github.com/deskline/support-portal/internal/storage"
	"github.com/deskline/support-portal/internal/worker"
)

// Services is the wired application.
type Services struct {
	Dispatcher    events.Dispatcher
	Broker        *realtime.Broker
	Tickets       *service.TicketService
	Comments      *service.CommentService
	Notifications *service.NotificationService
	Profiles      *service.ProfileService
	Attachments   *service.AttachmentService
	Files         *storage.DiskStore
	// Stream is the Kafka sink, nil when no brokers are configured.
	Stream *events.KafkaSink
}

// Build wires the services over pool. redisClient may be nil, in which case
// realtime publishing is disabled.
func Build(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger, metrics *observability.Metrics) *Services {
	dispatcher := events.NewInMemoryDispatcher()

	var (
		broker    *realtime.Broker
		publisher realtime.Publisher
	)
	if redisClient != nil {
		broker = realtime.NewBroker(redisClient, cfg.Redis.ChannelPrefix, logger)
		publisher = broker
	}

	profiles := repository.NewProfileRepository(pool)
	notifications := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repository.NewNotificationRepository(pool),
		ProfileRepo:      profiles,
		Dispatcher:       dispatcher,
		Realtime:         publisher,
		Logger:           logger,
		Config:           cfg.Notification,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:    repository.NewTicketRepository(pool),
		AuditRepo:     repository.NewAuditLogRepository(pool),
		Notifications: notifications,
		Dispatcher:    dispatcher,
		Realtime:      publisher,
		Logger:        logger,
		Metrics:       metrics,
		Policy:        cfg.Tickets,
	})
	comments := service.NewCommentService(service.CommentDependencies{
		CommentRepo:   repository.NewCommentRepository(pool),
		Tickets:       tickets,
		Notifications: notifications,
		Dispatcher:    dispatcher,
		Realtime:      publisher,
		Logger:        logger,
		Metrics:       metrics,
	})
	files := storage.NewDiskStore(cfg.Storage.RootDir, cfg.Storage.PublicBaseURL)

	s := &Services{
		Dispatcher:    dispatcher,
		Broker:        broker,
		Tickets:       tickets,
		Comments:      comments,
		Notifications: notifications,
		Profiles:      service.NewProfileService(profiles, logger),
		Attachments:   service.NewAttachmentService(files, cfg.Storage.MaxUploadBytes(), logger),
		Files:         files,
	}
	if len(cfg.Kafka.Brokers) > 0 {
		s.Stream = events.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	return s
}

// StartWorkers registers the event consumers.
func (s *Services) StartWorkers(logger *zap.Logger) {
	deps := worker.Dependencies{
		Dispatcher:    s.Dispatcher,
		Notifications: s.Notifications,
		Logger:        logger,
	}
	if s.Stream != nil {
		deps.Stream = s.Stream
	}
	worker.StartNotificationWorker(deps)
}

// Close releases the event stream.
func (s *Services) Close() error {
	if s.Stream == nil {
		return nil
	}
	return s.Stream.Close()
}
