package domain

import "time"

// AuditAction captures what happened to a ticket.
type AuditAction string

const (
	AuditActionCreated      AuditAction = "CREATED"
	AuditActionEdited       AuditAction = "EDITED"
	AuditActionStatusChange AuditAction = "STATUS_CHANGE"
)

// SystemActorName labels entries whose actor profile no longer resolves.
const SystemActorName = "Sistema"

// AuditLogEntry is an immutable audit trail entry.
type AuditLogEntry struct {
	ID           string
	TicketID     string
	TicketNumber int64
	ActorID      string
	ActorName    string
	Action       AuditAction
	Details      string
	CreatedAt    time.Time
}
