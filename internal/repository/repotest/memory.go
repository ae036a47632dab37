// Package repotest provides in-memory repositories for tests. They follow
// the store contracts of the pgx repositories: missing rows report
// pgx.ErrNoRows and listings come back in the same order.
package repotest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/repository"
)

// ErrStore is returned by every write of a repository whose Fail flag is set.
var ErrStore = errors.New("store unavailable")

// Tickets is an in-memory TicketRepository assigning uuids and sequential numbers.
type Tickets struct {
	mu      sync.Mutex
	rows    map[string]domain.Ticket
	next    int64
	Fail    bool
	Updates int
}

// NewTickets returns an empty store.
func NewTickets() *Tickets { return &Tickets{rows: map[string]domain.Ticket{}} }

func (m *Tickets) Create(_ context.Context, t *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrStore
	}
	m.next++
	t.ID = uuid.NewString()
	t.Number = m.next
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.rows[t.ID] = *t
	return nil
}

func (m *Tickets) Update(_ context.Context, t *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrStore
	}
	if _, ok := m.rows[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.Updates++
	t.UpdatedAt = time.Now()
	m.rows[t.ID] = *t
	return nil
}

func (m *Tickets) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrStore
	}
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

func (m *Tickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (m *Tickets) List(_ context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ticket
	for _, t := range m.rows {
		if f.RequesterID != nil && t.RequesterID != *f.RequesterID {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Ticket) int { return int(b.Number - a.Number) })
	return out, nil
}

// AuditLog is an in-memory AuditLogRepository.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditLogEntry
	Fail    bool
}

func (m *AuditLog) Create(_ context.Context, e *domain.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrStore
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *AuditLog) ListByTicket(_ context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditLogEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].TicketID == ticketID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// Notifications is an in-memory NotificationRepository.
type Notifications struct {
	mu    sync.Mutex
	items []domain.Notification
	Fail  bool
}

func (m *Notifications) Create(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrStore
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now()
	m.items = append(m.items, *n)
	return nil
}

func (m *Notifications) ListByUser(_ context.Context, userID string) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *Notifications) MarkRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *Notifications) MarkAllRead(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].UserID == userID {
			m.items[i].IsRead = true
		}
	}
	return nil
}

func (m *Notifications) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].UserID == userID {
			m.items = slices.Delete(m.items, i, i+1)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// ForUser lists the user's notifications newest first.
func (m *Notifications) ForUser(userID string) []domain.Notification {
	out, _ := m.ListByUser(context.Background(), userID)
	return out
}

// Profiles is an in-memory ProfileRepository.
type Profiles struct {
	mu   sync.Mutex
	rows map[string]domain.Profile
}

// NewProfiles returns a store seeded with profiles.
func NewProfiles(profiles ...domain.Profile) *Profiles {
	m := &Profiles{rows: map[string]domain.Profile{}}
	for _, p := range profiles {
		m.rows[p.ID] = p
	}
	return m
}

func (m *Profiles) Ensure(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rows[p.ID]; ok {
		return &existing, nil
	}
	stored := *p
	stored.CreatedAt = time.Now()
	m.rows[p.ID] = stored
	return &stored, nil
}

func (m *Profiles) Update(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.rows[p.ID] = *p
	return nil
}

func (m *Profiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

func (m *Profiles) List(_ context.Context, search string) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(search)
	var out []domain.Profile
	for _, p := range m.rows {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Email), term) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Profile) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Profiles) ListAdmins(_ context.Context) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Profile
	for _, p := range m.rows {
		if p.Role == domain.RoleAdmin && p.IsActive {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Profile) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Comments is an in-memory CommentRepository.
type Comments struct {
	mu    sync.Mutex
	items []domain.Comment
}

func (m *Comments) Create(_ context.Context, c *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	m.items = append(m.items, *c)
	return nil
}

func (m *Comments) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Comment
	for _, c := range m.items {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len reports the number of stored tickets.
func (m *Tickets) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// Entries returns every audit entry in insertion order.
func (m *AuditLog) Entries() []domain.AuditLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries)
}

var (
	_ repository.TicketRepository       = (*Tickets)(nil)
	_ repository.AuditLogRepository     = (*AuditLog)(nil)
	_ repository.NotificationRepository = (*Notifications)(nil)
	_ repository.ProfileRepository      = (*Profiles)(nil)
	_ repository.CommentRepository      = (*Comments)(nil)
)
