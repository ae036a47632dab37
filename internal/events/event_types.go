package events

import (
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketEdited        EventType = "ticket_edited"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventCommentAdded        EventType = "comment_added"
)

// AllTypes lists every event type, for subscribers that want everything.
var AllTypes = []EventType{
	EventTicketCreated,
	EventTicketEdited,
	EventTicketStatusChanged,
	EventTicketDeleted,
	EventCommentAdded,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// ActorFrom builds the actor of an event from a profile.
func ActorFrom(p *domain.Profile) Actor {
	if p == nil {
		return Actor{Name: domain.SystemActorName}
	}
	return Actor{ID: p.ID, Name: p.Name, Role: p.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number      int64                 `json:"ticket_number"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	RequesterID string                `json:"requester_id"`
	Requester   string                `json:"requester"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Number      int64               `json:"ticket_number"`
	Title       string              `json:"title"`
	RequesterID string              `json:"requester_id"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	Number      int64  `json:"ticket_number"`
	Title       string `json:"title"`
	RequesterID string `json:"requester_id"`
	Preview     string `json:"preview"`
}
