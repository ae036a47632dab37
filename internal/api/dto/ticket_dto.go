package dto

import (
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Attachments []string              `json:"attachments"`
}

// UpdateTicketRequest payload. Omitted fields are left unchanged.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Priority    *domain.TicketPriority `json:"priority"`
	Category    *string                `json:"category"`
	Status      *domain.TicketStatus   `json:"status"`
	Attachments []string               `json:"attachments"`
}

// StatusRequest payload for PATCH /tickets/:id/status.
type StatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// MoveRequest describes a card dropped on a board lane.
type MoveRequest struct {
	TicketID string              `json:"ticket_id"`
	From     domain.TicketStatus `json:"from"`
	To       domain.TicketStatus `json:"to"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Number      int64                 `json:"ticket_number"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Requester   string                `json:"requester"`
	RequesterID string                `json:"requester_id"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	Category    string                `json:"category"`
	Attachments []string              `json:"attachments"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	ResolvedAt  *time.Time            `json:"resolved_at"`
}

// TicketListResponse carries the filtered, sorted list and the facet values
// for the filter controls.
type TicketListResponse struct {
	Tickets    []TicketResponse `json:"tickets"`
	Total      int              `json:"total"`
	Categories []string         `json:"categories"`
	Requesters []string         `json:"requesters"`
}

// LaneResponse is one board column.
type LaneResponse struct {
	Status  domain.TicketStatus `json:"status"`
	Label   string              `json:"label"`
	Tickets []TicketResponse    `json:"tickets"`
}

// CommentRequest payload.
type CommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse is the wire form of a comment.
type CommentResponse struct {
	ID         string      `json:"id"`
	TicketID   string      `json:"ticket_id"`
	AuthorID   string      `json:"author_id"`
	AuthorName string      `json:"author_name"`
	AuthorRole domain.Role `json:"author_role"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"created_at"`
}

// AuditEntryResponse is one audit trail line.
type AuditEntryResponse struct {
	ID           string             `json:"id"`
	TicketNumber int64              `json:"ticket_number"`
	ActorID      string             `json:"actor_id,omitempty"`
	ActorName    string             `json:"actor_name"`
	Action       domain.AuditAction `json:"action"`
	ActionLabel  string             `json:"action_label"`
	Details      string             `json:"details"`
	CreatedAt    time.Time          `json:"created_at"`
}

// AttachmentResponse carries the public URL of an uploaded file.
type AttachmentResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}
