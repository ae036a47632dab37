package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/dto"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/service"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// CommentsHandler serves the conversation on a ticket.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// List GET /tickets/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.List(c.UserContext(), profile, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Add POST /tickets/:id/comments.
func (h *CommentsHandler) Add(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.comments.Add(c.UserContext(), profile, c.Params("id"), req.Content)
	if comment == nil {
		return err
	}
	return reply(c, http.StatusCreated, commentResponse(comment), err)
}

func commentResponse(cm *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         cm.ID,
		TicketID:   cm.TicketID,
		AuthorID:   cm.AuthorID,
		AuthorName: cm.AuthorName,
		AuthorRole: cm.AuthorRole,
		Content:    cm.Content,
		CreatedAt:  cm.CreatedAt,
	}
}
