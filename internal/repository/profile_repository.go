package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/support-portal/internal/domain"
)

// ProfileRepository defines persistence access for portal profiles.
type ProfileRepository interface {
	// Ensure inserts profile unless a row with its id exists, then returns
	// the stored row. An existing row is never modified.
	Ensure(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	List(ctx context.Context, search string) ([]domain.Profile, error)
	ListAdmins(ctx context.Context) ([]domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileSelect = `SELECT id, name, email, role, is_active, created_at, updated_at FROM profiles`

func (r *profileRepository) Ensure(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	const query = `
        INSERT INTO profiles (id, name, email, role, is_active)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Role,
		profile.IsActive,
	); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, profile.ID)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	const query = `
        UPDATE profiles SET name=$1, role=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.Name,
		profile.Role,
		profile.IsActive,
		profile.ID,
	).Scan(&profile.UpdatedAt)
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	rows, err := r.pool.Query(ctx, profileSelect+` WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &profiles[0], nil
}

func (r *profileRepository) List(ctx context.Context, search string) ([]domain.Profile, error) {
	query := profileSelect
	args := []any{}
	if term := strings.TrimSpace(search); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		query += ` WHERE LOWER(name) LIKE $1 OR LOWER(email) LIKE $1`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func (r *profileRepository) ListAdmins(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.pool.Query(ctx, profileSelect+` WHERE role=$1 AND is_active ORDER BY name ASC`, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

func scanProfiles(rows pgx.Rows) ([]domain.Profile, error) {
	var result []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
