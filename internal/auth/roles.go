package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/domain"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// RequireRole admits callers whose profile holds one of roles.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := ProfileFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, role := range roles {
			if profile.Role == role {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("this action requires the " + string(roles[0]) + " role")
	}
}

// RequireAdmin guards the user management routes.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}
