package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// Statuses lists the known states in board order.
var Statuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved}

// Valid reports whether s is one of the known states. Stored rows may carry
// legacy values; those are tolerated on read but never written.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// TicketPriority enumerates urgency, ordered by severity for display.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Severity ranks priorities for display, LOW=1 .. CRITICAL=4, unknown=0.
func (p TicketPriority) Severity() int {
	switch p {
	case TicketPriorityLow:
		return 1
	case TicketPriorityMedium:
		return 2
	case TicketPriorityHigh:
		return 3
	case TicketPriorityCritical:
		return 4
	}
	return 0
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Number      int64
	Title       string
	Description string
	// Requester is the requester's current display name, or the name
	// captured when the ticket was opened if the profile is gone.
	Requester   string
	RequesterID string
	Priority    TicketPriority
	Status      TicketStatus
	Category    string
	Attachments []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

// OwnedBy reports whether userID opened the ticket.
func (t *Ticket) OwnedBy(userID string) bool {
	return t != nil && t.RequesterID == userID
}
