package model

import (
	"strings"

	"github.com/deppfellow/edufinance/internal/validation"
)

type Institution struct {
	Base
	Name     string  `json:"name" db:"name"`
	Code     string  `json:"code" db:"code"`
	Address  *string `json:"address" db:"address"`
	Phone    *string `json:"phone" db:"phone"`
	Email    *string `json:"email" db:"email"`
	IsActive bool    `json:"is_active" db:"is_active"`
}

type CreateInstitutionRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=200"`
	Code    string  `json:"code" validate:"required,min=2,max=30,alphanum"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Email   *string `json:"email"`
}

func (r *CreateInstitutionRequest) Validate() error {
	trimSpace(r.Email)
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkOptional(errs, "email", r.Email, "email", msgEmail)
	return errs.OrNil()
}

// Normalize cleans the payload before it is persisted.
func (r *CreateInstitutionRequest) Normalize() {
	r.Name = CleanString(r.Name)
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Address = CleanOptional(r.Address)
	r.Phone = CleanOptional(r.Phone)
	r.Email = normalizeOptionalEmail(r.Email)
}

type UpdateInstitutionRequest struct {
	IDParam
	Name     *string `json:"name" validate:"omitempty,min=2,max=200"`
	Address  *string `json:"address" validate:"omitempty,max=300"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateInstitutionRequest) Validate() error {
	trimSpace(r.Email)
	if err := validateStruct(r); err != nil {
		return err
	}
	var errs validation.CustomValidationErrors
	errs = checkOptional(errs, "email", r.Email, "email", msgEmail)
	return errs.OrNil()
}

// ApplyTo merges the non-nil fields into inst.
func (r *UpdateInstitutionRequest) ApplyTo(inst *Institution) {
	if r.Name != nil {
		inst.Name = CleanString(*r.Name)
	}
	if r.Address != nil {
		inst.Address = CleanOptional(r.Address)
	}
	if r.Phone != nil {
		inst.Phone = CleanOptional(r.Phone)
	}
	if r.Email != nil {
		inst.Email = normalizeOptionalEmail(r.Email)
	}
	if r.IsActive != nil {
		inst.IsActive = *r.IsActive
	}
}
