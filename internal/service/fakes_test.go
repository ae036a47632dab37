package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/observability"
	"github.com/deskline/support-portal/internal/realtime"
	"github.com/deskline/support-portal/internal/repository/repotest"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []realtime.Change
	fail    bool
}

func (p *recordingPublisher) Publish(_ context.Context, c realtime.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("redis down")
	}
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) tables() []realtime.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.Table, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Table)
	}
	return out
}

type recordingRelay struct {
	mu     sync.Mutex
	alerts []Alert
}

func (r *recordingRelay) Send(_ context.Context, a Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

type memStore struct {
	keys []string
	fail bool
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("disk full")
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://files.example.com/" + key, nil
}

var (
	adminAna = domain.Profile{ID: "admin-1", Name: "Ana Admin", Email: "ana@example.com", Role: domain.RoleAdmin, IsActive: true}
	adminBia = domain.Profile{ID: "admin-2", Name: "Bia Admin", Email: "bia@example.com", Role: domain.RoleAdmin, IsActive: true}
	userCaio = domain.Profile{ID: "user-1", Name: "Caio", Email: "caio@example.com", Role: domain.RoleUser, IsActive: true}
	userDani = domain.Profile{ID: "user-2", Name: "Dani", Email: "dani@example.com", Role: domain.RoleUser, IsActive: true}
)

type harness struct {
	tickets       *repotest.Tickets
	audit         *repotest.AuditLog
	notifications *repotest.Notifications
	profiles      *repotest.Profiles
	comments      *repotest.Comments
	realtime      *recordingPublisher
	relay         *recordingRelay
	metrics       *observability.Metrics
	dispatcher    events.Dispatcher
	now           time.Time

	ticketSvc       *TicketService
	commentSvc      *CommentService
	notificationSvc *NotificationService
	profileSvc      *ProfileService
}

func newHarness(clearOnReopen bool) *harness {
	h := &harness{
		tickets:       repotest.NewTickets(),
		audit:         &repotest.AuditLog{},
		notifications: &repotest.Notifications{},
		profiles:      repotest.NewProfiles(adminAna, adminBia, userCaio, userDani),
		comments:      &repotest.Comments{},
		realtime:      &recordingPublisher{},
		relay:         &recordingRelay{},
		metrics:       observability.NewMetrics(),
		dispatcher:    events.NewInMemoryDispatcher(),
		now:           time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC),
	}
	h.notificationSvc = NewNotificationService(NotificationDependencies{
		NotificationRepo: h.notifications,
		ProfileRepo:      h.profiles,
		Dispatcher:       h.dispatcher,
		Realtime:         h.realtime,
		Relay:            h.relay,
	})
	h.notificationSvc.RegisterHandlers()
	h.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:    h.tickets,
		AuditRepo:     h.audit,
		Notifications: h.notificationSvc,
		Dispatcher:    h.dispatcher,
		Realtime:      h.realtime,
		Metrics:       h.metrics,
		Policy:        ticketsPolicy(clearOnReopen),
		Clock:         func() time.Time { return h.now },
	})
	h.commentSvc = NewCommentService(CommentDependencies{
		CommentRepo:   h.comments,
		Tickets:       h.ticketSvc,
		Notifications: h.notificationSvc,
		Dispatcher:    h.dispatcher,
		Realtime:      h.realtime,
		Metrics:       h.metrics,
	})
	h.profileSvc = NewProfileService(h.profiles, nil)
	return h
}

func ticketsPolicy(clearOnReopen bool) config.TicketsConfig {
	return config.TicketsConfig{
		ClearResolvedOnReopen: clearOnReopen,
		Categories:            []string{"ERP MEGA", "Microgestão", "Power BI", "Acessos", "Outro"},
	}
}
