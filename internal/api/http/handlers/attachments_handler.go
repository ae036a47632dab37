package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/dto"
	"github.com/deskline/support-portal/internal/service"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// AttachmentsHandler accepts file uploads.
type AttachmentsHandler struct {
	attachments *service.AttachmentService
}

// NewAttachmentsHandler constructs handler.
func NewAttachmentsHandler(attachments *service.AttachmentService) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments}
}

// Upload POST /attachments with a multipart "file" field.
func (h *AttachmentsHandler) Upload(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", map[string]any{"file": "required"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("could not read the uploaded file", map[string]any{"file": header.Filename})
	}
	defer file.Close()

	url, err := h.attachments.Upload(c.UserContext(), profile, header.Filename, header.Size, file)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AttachmentResponse{
		URL:      url,
		FileName: header.Filename,
		Size:     header.Size,
	}})
}
