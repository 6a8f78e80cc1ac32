package repository

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, institution_id, email, password_hash, first_name, last_name, role,
	is_active, last_login_at, created_at, updated_at`

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

// UserFilter scopes a listing; a nil InstitutionID lists across tenants.
type UserFilter struct {
	InstitutionID *uuid.UUID
	Role          model.Role
	IsActive      *bool
	Search        string
	Limit         int
	Offset        int
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO users (institution_id, email, password_hash, first_name, last_name, role, is_active)
		VALUES (@institution_id, @email, @password_hash, @first_name, @last_name, @role, @is_active)
		RETURNING `+userColumns,
		pgx.NamedArgs{
			"institution_id": u.InstitutionID,
			"email":          u.Email,
			"password_hash":  u.PasswordHash,
			"first_name":     u.FirstName,
			"last_name":      u.LastName,
			"role":           u.Role,
			"is_active":      u.IsActive,
		})
	return one[model.User](rows, err, "users")
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return one[model.User](rows, err, "users")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return one[model.User](rows, err, "users")
}

const userFilterWhere = `
	WHERE (@institution_id::uuid IS NULL OR institution_id = @institution_id)
	  AND (@role::text IS NULL OR role = @role)
	  AND (@is_active::boolean IS NULL OR is_active = @is_active)
	  AND (@search::text IS NULL
	       OR email ILIKE '%' || @search || '%'
	       OR (first_name || ' ' || last_name) ILIKE '%' || @search || '%')`

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	args := pgx.NamedArgs{
		"institution_id": f.InstitutionID,
		"role":           optional(string(f.Role)),
		"is_active":      f.IsActive,
		"search":         optional(f.Search),
		"limit":          f.Limit,
		"offset":         f.Offset,
	}

	var total int
	if err := r.server.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+userFilterWhere, args).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+userColumns+` FROM users`+userFilterWhere+`
		ORDER BY last_name, first_name
		LIMIT @limit OFFSET @offset`, args)
	items, err := many[model.User](rows, err, "users")
	return items, total, err
}

func (r *UserRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE users
		SET first_name = @first_name, last_name = @last_name, role = @role,
		    password_hash = @password_hash, is_active = @is_active
		WHERE id = @id
		RETURNING `+userColumns,
		pgx.NamedArgs{
			"id":            u.ID,
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
			"role":          u.Role,
			"password_hash": u.PasswordHash,
			"is_active":     u.IsActive,
		})
	return one[model.User](rows, err, "users")
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.server.DB.Pool, "users",
		`UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
}

func (r *UserRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.server.DB.Pool, "users",
		`UPDATE users SET is_active = FALSE WHERE id = $1`, id)
}

func (r *UserRepository) SuperAdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE role = 'super_admin')`).Scan(&exists)
	return exists, err
}
