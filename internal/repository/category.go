package repository

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, institution_id, name, kind, description, created_at, updated_at`

type CategoryRepository struct {
	server *server.Server
}

func NewCategoryRepository(s *server.Server) *CategoryRepository {
	return &CategoryRepository{server: s}
}

func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO categories (institution_id, name, kind, description)
		VALUES (@institution_id, @name, @kind, @description)
		RETURNING `+categoryColumns,
		pgx.NamedArgs{
			"institution_id": c.InstitutionID,
			"name":           c.Name,
			"kind":           c.Kind,
			"description":    c.Description,
		})
	return one[model.Category](rows, err, "categories")
}

func (r *CategoryRepository) GetByID(ctx context.Context, institutionID, id uuid.UUID) (*model.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE institution_id = $1 AND id = $2`,
		institutionID, id)
	return one[model.Category](rows, err, "categories")
}

func (r *CategoryRepository) List(ctx context.Context, institutionID uuid.UUID) ([]model.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE institution_id = $1 ORDER BY kind, name`,
		institutionID)
	return many[model.Category](rows, err, "categories")
}

func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE categories SET name = @name, kind = @kind, description = @description
		WHERE institution_id = @institution_id AND id = @id
		RETURNING `+categoryColumns,
		pgx.NamedArgs{
			"id":             c.ID,
			"institution_id": c.InstitutionID,
			"name":           c.Name,
			"kind":           c.Kind,
			"description":    c.Description,
		})
	return one[model.Category](rows, err, "categories")
}

// Delete fails with a foreign key violation while events reference the
// category.
func (r *CategoryRepository) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	return execOne(ctx, r.server.DB.Pool, "categories",
		`DELETE FROM categories WHERE institution_id = $1 AND id = $2`, institutionID, id)
}
