// Package portal holds the application state of a portal session and the
// controller that applies remote mutations to it.
//
// State only changes through Reduce. Everything a screen renders is
// recomputed from State by Derive, so a fresh snapshot from the store or a
// realtime push always produces the same result as a manual refresh.
package portal

import (
	"slices"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/ticketview"
)

// View identifies the active screen.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewTickets       View = "tickets"
	ViewCreate        View = "create"
	ViewDetail        View = "detail"
	ViewEdit          View = "edit"
	ViewUsers         View = "users"
	ViewNotifications View = "notifications"
)

// BoardMode selects how the ticket list is laid out.
type BoardMode string

const (
	ModeList   BoardMode = "list"
	ModeKanban BoardMode = "kanban"
)

// State is the complete session state.
type State struct {
	View             View
	SelectedTicketID string
	EditingTicketID  string
	Tickets          []domain.Ticket
	Notifications    []domain.Notification
	Criteria         ticketview.Criteria
	Sort             ticketview.SortState
	BoardMode        BoardMode
	Range            ticketview.Range
}

// NewState returns the state of a freshly opened session.
func NewState() State {
	return State{
		View:      ViewDashboard,
		Criteria:  ticketview.DefaultCriteria(),
		Sort:      ticketview.DefaultSort(),
		BoardMode: ModeList,
		Range:     ticketview.RangeWeek,
	}
}

// Action is a state transition trigger.
type Action interface {
	action()
}

type (
	// ViewChanged switches screens. Leaving the detail or edit screens
	// clears the matching selection.
	ViewChanged struct{ View View }
	// TicketSelected opens a ticket in the detail screen.
	TicketSelected struct{ TicketID string }
	// TicketEditStarted opens a ticket in the edit screen.
	TicketEditStarted struct{ TicketID string }
	// TicketsLoaded replaces the ticket snapshot.
	TicketsLoaded struct{ Tickets []domain.Ticket }
	// TicketStatusPatched applies a status locally, before or after the
	// store confirms it.
	TicketStatusPatched struct {
		TicketID string
		Status   domain.TicketStatus
	}
	// TicketReplaced swaps in the store's copy of a ticket.
	TicketReplaced struct{ Ticket domain.Ticket }
	// TicketRemoved drops a ticket from the snapshot.
	TicketRemoved    struct{ TicketID string }
	CriteriaChanged  struct{ Criteria ticketview.Criteria }
	FiltersCleared   struct{}
	SortToggled      struct{ Field ticketview.SortField }
	BoardModeChanged struct{ Mode BoardMode }
	RangeChanged     struct{ Range ticketview.Range }
	// NotificationsLoaded replaces the notification snapshot.
	NotificationsLoaded    struct{ Notifications []domain.Notification }
	NotificationMarkedRead struct{ NotificationID string }
	NotificationsAllRead   struct{}
	NotificationRemoved    struct{ NotificationID string }
	// NotificationsRestored puts back a snapshot taken before an optimistic
	// change whose remote write failed.
	NotificationsRestored struct{ Notifications []domain.Notification }
)

func (ViewChanged) action()            {}
func (TicketSelected) action()         {}
func (TicketEditStarted) action()      {}
func (TicketsLoaded) action()          {}
func (TicketStatusPatched) action()    {}
func (TicketReplaced) action()         {}
func (TicketRemoved) action()          {}
func (CriteriaChanged) action()        {}
func (FiltersCleared) action()         {}
func (SortToggled) action()            {}
func (BoardModeChanged) action()       {}
func (RangeChanged) action()           {}
func (NotificationsLoaded) action()    {}
func (NotificationMarkedRead) action() {}
func (NotificationsAllRead) action()   {}
func (NotificationRemoved) action()    {}
func (NotificationsRestored) action()  {}

// Reduce returns the state that results from applying a to s. It never
// modifies the slices held by s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ViewChanged:
		s.View = a.View
		if a.View != ViewDetail {
			s.SelectedTicketID = ""
		}
		if a.View != ViewEdit {
			s.EditingTicketID = ""
		}
	case TicketSelected:
		s.View = ViewDetail
		s.SelectedTicketID = a.TicketID
		s.EditingTicketID = ""
	case TicketEditStarted:
		s.View = ViewEdit
		s.EditingTicketID = a.TicketID
		s.SelectedTicketID = ""
	case TicketsLoaded:
		s.Tickets = slices.Clone(a.Tickets)
	case TicketStatusPatched:
		s.Tickets = patchTicket(s.Tickets, a.TicketID, func(t *domain.Ticket) {
			t.Status = a.Status
		})
	case TicketReplaced:
		s.Tickets = patchTicket(s.Tickets, a.Ticket.ID, func(t *domain.Ticket) {
			*t = a.Ticket
		})
	case TicketRemoved:
		s.Tickets = slices.DeleteFunc(slices.Clone(s.Tickets), func(t domain.Ticket) bool {
			return t.ID == a.TicketID
		})
		if s.SelectedTicketID == a.TicketID {
			s.SelectedTicketID = ""
			s.View = ViewTickets
		}
		if s.EditingTicketID == a.TicketID {
			s.EditingTicketID = ""
			s.View = ViewTickets
		}
	case CriteriaChanged:
		s.Criteria = a.Criteria
	case FiltersCleared:
		s.Criteria = ticketview.DefaultCriteria()
	case SortToggled:
		s.Sort = s.Sort.Toggle(a.Field)
	case BoardModeChanged:
		s.BoardMode = a.Mode
	case RangeChanged:
		s.Range = a.Range
	case NotificationsLoaded:
		s.Notifications = slices.Clone(a.Notifications)
	case NotificationsRestored:
		s.Notifications = slices.Clone(a.Notifications)
	case NotificationMarkedRead:
		s.Notifications = patchNotifications(s.Notifications, func(n *domain.Notification) {
			if n.ID == a.NotificationID {
				n.IsRead = true
			}
		})
	case NotificationsAllRead:
		s.Notifications = patchNotifications(s.Notifications, func(n *domain.Notification) {
			n.IsRead = true
		})
	case NotificationRemoved:
		s.Notifications = slices.DeleteFunc(slices.Clone(s.Notifications), func(n domain.Notification) bool {
			return n.ID == a.NotificationID
		})
	}
	return s
}

func patchTicket(tickets []domain.Ticket, id string, apply func(*domain.Ticket)) []domain.Ticket {
	out := slices.Clone(tickets)
	for i := range out {
		if out[i].ID == id {
			apply(&out[i])
		}
	}
	return out
}

func patchNotifications(notifications []domain.Notification, apply func(*domain.Notification)) []domain.Notification {
	out := slices.Clone(notifications)
	for i := range out {
		apply(&out[i])
	}
	return out
}

// Unread counts notifications not yet read.
func (s State) Unread() int {
	count := 0
	for _, n := range s.Notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Ticket looks up a ticket in the current snapshot.
func (s State) Ticket(id string) (domain.Ticket, bool) {
	for _, t := range s.Tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}
