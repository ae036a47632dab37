package domain

import "time"

// Notification is an inbox item addressed to a single user.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	IsRead    bool
	TicketID  *string
	CreatedAt time.Time
}
