package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/api/dto"
	"github.com/deskline/support-portal/internal/service"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// UsersHandler exposes the caller's profile and user administration.
type UsersHandler struct {
	profiles *service.ProfileService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(profiles *service.ProfileService) *UsersHandler {
	return &UsersHandler{profiles: profiles}
}

// Me handles GET /me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// List handles GET /users?q=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	profiles, err := h.profiles.List(c.UserContext(), profile, c.Query("q"))
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profileResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.profiles.Update(c.UserContext(), profile, c.Params("id"), service.ProfileUpdateInput{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(updated)})
}
