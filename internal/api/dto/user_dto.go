package dto

import (
	"time"

	"github.com/deskline/support-portal/internal/domain"
)

// ProfileResponse is the wire form of a profile.
type ProfileResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// UpdateProfileRequest payload for PUT /users/:id.
type UpdateProfileRequest struct {
	Name     *string      `json:"name"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}

// NotificationResponse is one inbox item.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	TicketID  *string   `json:"ticket_id"`
	CreatedAt time.Time `json:"created_at"`
}

// InboxResponse lists notifications with the unread count.
type InboxResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Unread        int                    `json:"unread"`
}
