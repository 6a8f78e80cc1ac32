package service

import (
	"context"

	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
)

type categoryStore interface {
	categoryGetter
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	List(ctx context.Context, institutionID uuid.UUID) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) (*model.Category, error)
	Delete(ctx context.Context, institutionID, id uuid.UUID) error
}

type CategoryService struct {
	server     *server.Server
	categories categoryStore
}

func NewCategoryService(s *server.Server, categories categoryStore) *CategoryService {
	return &CategoryService{server: s, categories: categories}
}

func (s *CategoryService) List(ctx context.Context, institutionID uuid.UUID) ([]model.Category, error) {
	items, err := s.categories.List(ctx, institutionID)
	if items == nil {
		items = []model.Category{}
	}
	return items, err
}

func (s *CategoryService) Create(ctx context.Context, institutionID uuid.UUID, req *model.CreateCategoryRequest) (*model.Category, error) {
	return s.categories.Create(ctx, req.ToCategory(institutionID))
}

func (s *CategoryService) Update(ctx context.Context, institutionID uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, institutionID, req.UUID())
	if err != nil {
		return nil, err
	}
	req.ApplyTo(category)
	return s.categories.Update(ctx, category)
}

// Delete fails with a foreign key error while events still use the category.
func (s *CategoryService) Delete(ctx context.Context, institutionID, id uuid.UUID) error {
	return s.categories.Delete(ctx, institutionID, id)
}
