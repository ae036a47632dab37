package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/deskline/support-portal/internal/domain"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

type stubProfiles struct {
	inactive map[string]bool
	calls    int
}

func (s *stubProfiles) EnsureProfile(_ context.Context, id, email, name string) (*domain.Profile, error) {
	s.calls++
	if s.inactive[id] {
		return nil, apperrors.NewForbidden("account is inactive")
	}
	role := domain.RoleUser
	if id == "admin" {
		role = domain.RoleAdmin
	}
	return &domain.Profile{ID: id, Email: email, Name: name, Role: role, IsActive: true}, nil
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "portal", "web", time.Minute)
	raw, expires, err := tm.GenerateToken("u-1", "caio@example.com", "Caio")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expiry %v is not in the future", expires)
	}
	claims, err := tm.ParseToken(raw)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "u-1" || claims.Email != "caio@example.com" || claims.Name != "Caio" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", "portal", "", time.Minute)
	sign := func(secret string, claims Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    "portal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}
	}
	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	foreign := valid()
	foreign.Issuer = "elsewhere"
	noSubject := valid()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong secret", sign("other", Claims{Email: "a@b.c", RegisteredClaims: valid()})},
		{"expired", sign("secret", Claims{Email: "a@b.c", RegisteredClaims: expired})},
		{"wrong issuer", sign("secret", Claims{Email: "a@b.c", RegisteredClaims: foreign})},
		{"missing subject", sign("secret", Claims{Email: "a@b.c", RegisteredClaims: noSubject})},
		{"missing email", sign("secret", Claims{RegisteredClaims: valid()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.ParseToken(tt.token); err == nil {
				t.Error("ParseToken accepted the token")
			}
		})
	}
}

func newTestApp(tm *TokenManager, profiles ProfileProvisioner) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm, profiles)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		profile, _ := ProfileFromContext(c)
		return c.SendString(profile.ID)
	})
	app.Get("/admin", mw.Handle, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", "", "", time.Minute)
	profiles := &stubProfiles{inactive: map[string]bool{"gone": true}}
	app := newTestApp(tm, profiles)
	token := func(sub string) string {
		raw, _, err := tm.GenerateToken(sub, sub+"@example.com", "")
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid", "/me", "Bearer " + token("u-1"), http.StatusOK},
		{"inactive", "/me", "Bearer " + token("gone"), http.StatusForbidden},
		{"query token", "/me?access_token=" + token("u-1"), "", http.StatusOK},
		{"admin route as user", "/admin", "Bearer " + token("u-1"), http.StatusForbidden},
		{"admin route as admin", "/admin", "Bearer " + token("admin"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestProfileFromContextMissing(t *testing.T) {
	app := fiber.New()
	var found bool
	app.Get("/", func(c *fiber.Ctx) error {
		_, found = ProfileFromContext(c)
		return nil
	})
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("ProfileFromContext reported a profile on an anonymous request")
	}
}
