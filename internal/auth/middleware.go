package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deskline/support-portal/internal/domain"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

const profileKey = "auth_profile"

// ProfileProvisioner resolves the profile of a verified identity, creating
// it on first sight.
type ProfileProvisioner interface {
	EnsureProfile(ctx context.Context, id, email, name string) (*domain.Profile, error)
}

// AuthMiddleware validates bearer tokens and loads the caller's profile.
type AuthMiddleware struct {
	tokens   *TokenManager
	profiles ProfileProvisioner
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, profiles ProfileProvisioner) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, profiles: profiles}
}

// Handle enforces authentication for protected routes. The token comes from
// the Authorization header, or from the access_token query parameter for
// clients such as EventSource that cannot set headers.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	raw, err := bearerToken(c)
	if err != nil {
		return err
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	profile, err := m.profiles.EnsureProfile(c.UserContext(), claims.Subject, claims.Email, claims.Name)
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(profileKey, profile)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" {
			return token, nil
		}
		return "", apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// ProfileFromContext retrieves the authenticated profile.
func ProfileFromContext(c *fiber.Ctx) (*domain.Profile, bool) {
	profile, ok := c.Locals(profileKey).(*domain.Profile)
	return profile, ok && profile != nil
}
