package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/repository"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// ProfileService provisions and administers portal profiles. Roles only
// change through explicit administrative updates.
type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

// ProfileUpdateInput lists the fields an administrator may change.
type ProfileUpdateInput struct {
	Name     *string
	Role     *domain.Role
	IsActive *bool
}

// NewProfileService builds the service.
func NewProfileService(profiles repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, logger: logger}
}

// EnsureProfile returns the profile for an authenticated identity, creating
// it as an active USER on first sight. An existing profile is returned as
// stored. Inactive profiles are refused.
func (s *ProfileService) EnsureProfile(ctx context.Context, id, email, name string) (*domain.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewUnauthorized("token subject missing")
	}
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if name == "" {
		name = displayNameFromEmail(email)
	}

	profile, err := s.profiles.Ensure(ctx, &domain.Profile{
		ID:       id,
		Name:     name,
		Email:    email,
		Role:     domain.RoleUser,
		IsActive: true,
	})
	if err != nil {
		s.logger.Error("ensure profile failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	if !profile.IsActive {
		return nil, apperrors.NewForbidden("account is inactive")
	}
	return profile, nil
}

// Get returns a profile by id.
func (s *ProfileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"id": id})
		}
		return nil, err
	}
	return profile, nil
}

// List returns profiles whose name or e-mail contains search. Admins only.
func (s *ProfileService) List(ctx context.Context, actor *domain.Profile, search string) ([]domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("administrator role required")
	}
	profiles, err := s.profiles.List(ctx, search)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	return profiles, nil
}

// Update changes a profile on behalf of an administrator. Administrators
// cannot deactivate or demote themselves.
func (s *ProfileService) Update(ctx context.Context, actor *domain.Profile, id string, input ProfileUpdateInput) (*domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("administrator role required")
	}
	if actor.ID == id {
		if input.IsActive != nil && !*input.IsActive {
			return nil, apperrors.NewConflict("administrators cannot deactivate their own account", nil)
		}
		if input.Role != nil && *input.Role != domain.RoleAdmin {
			return nil, apperrors.NewConflict("administrators cannot remove their own administrator role", nil)
		}
	}
	return s.apply(ctx, actor.Name, id, input)
}

// UpdateAsOperator changes a profile on behalf of a named operator outside
// the portal, such as the admin CLI.
func (s *ProfileService) UpdateAsOperator(ctx context.Context, operator, id string, input ProfileUpdateInput) (*domain.Profile, error) {
	if strings.TrimSpace(operator) == "" {
		return nil, apperrors.NewValidationError("operator name is required", nil)
	}
	return s.apply(ctx, operator, id, input)
}

func (s *ProfileService) apply(ctx context.Context, operator, id string, input ProfileUpdateInput) (*domain.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *profile

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name is required", map[string]any{"name": "required"})
		}
		profile.Name = name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		profile.Role = *input.Role
	}
	if input.IsActive != nil {
		profile.IsActive = *input.IsActive
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		s.logger.Error("update profile failed", zap.String("user_id", id), zap.String("operator", operator), zap.Error(err))
		return nil, err
	}
	if before.Role != profile.Role {
		s.logger.Info("profile role changed",
			zap.String("user_id", id),
			zap.String("operator", operator),
			zap.String("from", string(before.Role)),
			zap.String("to", string(profile.Role)))
	}
	if before.IsActive != profile.IsActive {
		s.logger.Info("profile active flag changed",
			zap.String("user_id", id),
			zap.String("operator", operator),
			zap.Bool("active", profile.IsActive))
	}
	return profile, nil
}

func displayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Usuário"
	}
	return local
}
