package repository

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const institutionColumns = `id, name, code, address, phone, email, is_active, created_at, updated_at`

type InstitutionRepository struct {
	server *server.Server
}

func NewInstitutionRepository(s *server.Server) *InstitutionRepository {
	return &InstitutionRepository{server: s}
}

func (r *InstitutionRepository) Create(ctx context.Context, req *model.CreateInstitutionRequest) (*model.Institution, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO institutions (name, code, address, phone, email)
		VALUES (@name, @code, @address, @phone, @email)
		RETURNING `+institutionColumns,
		pgx.NamedArgs{
			"name":    req.Name,
			"code":    req.Code,
			"address": req.Address,
			"phone":   req.Phone,
			"email":   req.Email,
		})
	return one[model.Institution](rows, err, "institutions")
}

func (r *InstitutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Institution, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+institutionColumns+` FROM institutions WHERE id = $1`, id)
	return one[model.Institution](rows, err, "institutions")
}

// List returns all institutions when only is nil, or just that one.
func (r *InstitutionRepository) List(ctx context.Context, only *uuid.UUID, p model.ListParams) ([]model.Institution, int, error) {
	args := pgx.NamedArgs{"only": only, "limit": p.Limit, "offset": p.Offset}

	var total int
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM institutions WHERE (@only::uuid IS NULL OR id = @only)`, args).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.server.DB.Pool.Query(ctx, `
		SELECT `+institutionColumns+`
		FROM institutions
		WHERE (@only::uuid IS NULL OR id = @only)
		ORDER BY name
		LIMIT @limit OFFSET @offset`, args)
	items, err := many[model.Institution](rows, err, "institutions")
	return items, total, err
}

func (r *InstitutionRepository) Update(ctx context.Context, inst *model.Institution) (*model.Institution, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE institutions
		SET name = @name, address = @address, phone = @phone, email = @email, is_active = @is_active
		WHERE id = @id
		RETURNING `+institutionColumns,
		pgx.NamedArgs{
			"id":        inst.ID,
			"name":      inst.Name,
			"address":   inst.Address,
			"phone":     inst.Phone,
			"email":     inst.Email,
			"is_active": inst.IsActive,
		})
	return one[model.Institution](rows, err, "institutions")
}

func (r *InstitutionRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.server.DB.Pool, "institutions",
		`UPDATE institutions SET is_active = FALSE WHERE id = $1`, id)
}
