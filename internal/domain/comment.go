package domain

import "time"

// Comment is an append-only message in a ticket conversation.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	AuthorName string
	AuthorRole Role
	Content    string
	CreatedAt  time.Time
}
