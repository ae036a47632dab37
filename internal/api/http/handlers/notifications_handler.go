package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/dto"
	"github.com/deskline/support-portal/internal/service"
)

// NotificationsHandler serves the caller's inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	items, err := h.notifications.List(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	resp := dto.InboxResponse{Notifications: make([]dto.NotificationResponse, 0, len(items))}
	for _, n := range items {
		if !n.IsRead {
			resp.Unread++
		}
		resp.Notifications = append(resp.Notifications, dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			TicketID:  n.TicketID,
			CreatedAt: n.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(c.UserContext(), profile.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete DELETE /notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.UserContext(), profile.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
