package portal

import (
	"testing"
	"time"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/ticketview"
)

func fixtureTickets() []domain.Ticket {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return []domain.Ticket{
		{ID: "t1", Number: 1, Title: "VPN", Requester: "Ana", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityCritical, CreatedAt: created, UpdatedAt: created},
		{ID: "t2", Number: 2, Title: "ERP", Requester: "Bruno", Status: domain.TicketStatusInProgress, Priority: domain.TicketPriorityLow, CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour)},
	}
}

func fixtureNotifications() []domain.Notification {
	return []domain.Notification{
		{ID: "n1", Title: "Status Atualizado"},
		{ID: "n2", Title: "Novo Chamado Criado", IsRead: true},
		{ID: "n3", Title: "Nova interação no chamado"},
	}
}

func TestReduceViewTransitions(t *testing.T) {
	s := NewState()
	if s.View != ViewDashboard || s.Sort != ticketview.DefaultSort() {
		t.Fatalf("NewState = %+v", s)
	}

	s = Reduce(s, TicketSelected{TicketID: "t1"})
	if s.View != ViewDetail || s.SelectedTicketID != "t1" {
		t.Errorf("after select: view=%s selected=%q", s.View, s.SelectedTicketID)
	}
	s = Reduce(s, TicketEditStarted{TicketID: "t1"})
	if s.View != ViewEdit || s.EditingTicketID != "t1" || s.SelectedTicketID != "" {
		t.Errorf("after edit: %+v", s)
	}
	s = Reduce(s, ViewChanged{View: ViewTickets})
	if s.EditingTicketID != "" || s.SelectedTicketID != "" {
		t.Errorf("leaving edit kept selection: %+v", s)
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(NewState(), TicketsLoaded{Tickets: fixtureTickets()})
	s = Reduce(s, NotificationsLoaded{Notifications: fixtureNotifications()})

	next := Reduce(s, TicketStatusPatched{TicketID: "t1", Status: domain.TicketStatusResolved})
	next = Reduce(next, NotificationsAllRead{})
	next = Reduce(next, TicketRemoved{TicketID: "t2"})

	if s.Tickets[0].Status != domain.TicketStatusOpen {
		t.Errorf("original ticket status changed to %s", s.Tickets[0].Status)
	}
	if len(s.Tickets) != 2 {
		t.Errorf("original ticket slice shrank to %d", len(s.Tickets))
	}
	if s.Unread() != 2 {
		t.Errorf("original unread = %d, want 2", s.Unread())
	}
	if next.Tickets[0].Status != domain.TicketStatusResolved || len(next.Tickets) != 1 || next.Unread() != 0 {
		t.Errorf("next state = %+v", next)
	}
}

func TestReduceRemovingSelectedTicketReturnsToList(t *testing.T) {
	s := Reduce(NewState(), TicketsLoaded{Tickets: fixtureTickets()})
	s = Reduce(s, TicketSelected{TicketID: "t2"})
	s = Reduce(s, TicketRemoved{TicketID: "t2"})
	if s.View != ViewTickets || s.SelectedTicketID != "" {
		t.Errorf("after removing selected: view=%s selected=%q", s.View, s.SelectedTicketID)
	}
}

func TestReduceFiltersAndSort(t *testing.T) {
	s := NewState()
	c := ticketview.DefaultCriteria()
	c.Query = "vpn"
	s = Reduce(s, CriteriaChanged{Criteria: c})
	s = Reduce(s, SortToggled{Field: ticketview.SortNumber})
	if s.Criteria.Query != "vpn" || s.Sort.Field != ticketview.SortNumber || s.Sort.Direction != ticketview.Desc {
		t.Errorf("state = %+v", s)
	}
	s = Reduce(s, FiltersCleared{})
	if s.Criteria != ticketview.DefaultCriteria() {
		t.Errorf("FiltersCleared left %+v", s.Criteria)
	}
}

func TestReduceNotifications(t *testing.T) {
	s := Reduce(NewState(), NotificationsLoaded{Notifications: fixtureNotifications()})
	s = Reduce(s, NotificationMarkedRead{NotificationID: "n1"})
	if s.Unread() != 1 {
		t.Errorf("unread after mark = %d, want 1", s.Unread())
	}
	s = Reduce(s, NotificationRemoved{NotificationID: "n3"})
	if len(s.Notifications) != 2 || s.Unread() != 0 {
		t.Errorf("after remove: %+v", s.Notifications)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)
	s := Reduce(NewState(), TicketsLoaded{Tickets: fixtureTickets()})
	s = Reduce(s, CriteriaChanged{Criteria: ticketview.Criteria{Requester: "Ana"}})

	first := Derive(s, now, time.UTC)
	again := Derive(Reduce(s, TicketsLoaded{Tickets: fixtureTickets()}), now, time.UTC)

	if len(first.Visible) != 1 || first.Visible[0].ID != "t1" {
		t.Fatalf("visible = %+v", first.Visible)
	}
	if first.Board.Size() != len(first.Visible) {
		t.Errorf("board size %d, visible %d", first.Board.Size(), len(first.Visible))
	}
	if first.Summary != again.Summary || len(first.Chart) != len(again.Chart) {
		t.Errorf("derive differs after reloading the same snapshot")
	}
	for i := range first.Chart {
		if first.Chart[i] != again.Chart[i] {
			t.Errorf("bucket %d differs: %+v vs %+v", i, first.Chart[i], again.Chart[i])
		}
	}
	if first.Summary.Total != 2 || first.Summary.CriticalActive != 1 {
		t.Errorf("summary covers the whole snapshot, got %+v", first.Summary)
	}
}
