package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountCash  AccountType = "cash"
	AccountBank  AccountType = "bank"
	AccountOther AccountType = "other"
)

type Account struct {
	Base
	InstitutionID uuid.UUID       `json:"institution_id" db:"institution_id"`
	Name          string          `json:"name" db:"name"`
	Type          AccountType     `json:"type" db:"type"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	IsActive      bool            `json:"is_active" db:"is_active"`
}

type CreateAccountRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,oneof=cash bank other"`
}

func (r *CreateAccountRequest) Validate() error {
	return validateStruct(r)
}

func (r *CreateAccountRequest) ToAccount(institutionID uuid.UUID) *Account {
	return &Account{
		InstitutionID: institutionID,
		Name:          CleanString(r.Name),
		Type:          AccountType(r.Type),
		Balance:       decimal.Zero,
		IsActive:      true,
	}
}

type UpdateAccountRequest struct {
	IDParam
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Type     *string `json:"type" validate:"omitempty,oneof=cash bank other"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateAccountRequest) Validate() error {
	return validateStruct(r)
}

func (r *UpdateAccountRequest) ApplyTo(a *Account) {
	if r.Name != nil {
		a.Name = CleanString(*r.Name)
	}
	if r.Type != nil {
		a.Type = AccountType(*r.Type)
	}
	if r.IsActive != nil {
		a.IsActive = *r.IsActive
	}
}
