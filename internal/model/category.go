package model

import "github.com/google/uuid"

type CategoryKind string

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

type Category struct {
	Base
	InstitutionID uuid.UUID    `json:"institution_id" db:"institution_id"`
	Name          string       `json:"name" db:"name"`
	Kind          CategoryKind `json:"kind" db:"kind"`
	Description   *string      `json:"description" db:"description"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Kind        string  `json:"kind" validate:"omitempty,oneof=income expense"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (r *CreateCategoryRequest) Validate() error {
	return validateStruct(r)
}

func (r *CreateCategoryRequest) ToCategory(institutionID uuid.UUID) *Category {
	kind := CategoryKind(r.Kind)
	if kind == "" {
		kind = CategoryIncome
	}
	return &Category{
		InstitutionID: institutionID,
		Name:          CleanString(r.Name),
		Kind:          kind,
		Description:   CleanOptional(r.Description),
	}
}

type UpdateCategoryRequest struct {
	IDParam
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Kind        *string `json:"kind" validate:"omitempty,oneof=income expense"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (r *UpdateCategoryRequest) Validate() error {
	return validateStruct(r)
}

func (r *UpdateCategoryRequest) ApplyTo(c *Category) {
	if r.Name != nil {
		c.Name = CleanString(*r.Name)
	}
	if r.Kind != nil {
		c.Kind = CategoryKind(*r.Kind)
	}
	if r.Description != nil {
		c.Description = CleanOptional(r.Description)
	}
}
