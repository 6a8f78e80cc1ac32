package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password does not match")

type User struct {
	Base
	InstitutionID *uuid.UUID `json:"institution_id" db:"institution_id"`
	Email         string     `json:"email" db:"email"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	FirstName     string     `json:"first_name" db:"first_name"`
	LastName      string     `json:"last_name" db:"last_name"`
	Role          Role       `json:"role" db:"role"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at" db:"last_login_at"`
}

func (u *User) FullName() string {
	return CleanString(u.FirstName + " " + u.LastName)
}

// SetPassword stores the bcrypt hash of pwd.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// Principal returns the identity embedded into tokens.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, InstitutionID: u.InstitutionID, Role: u.Role}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	trimSpace(&r.Email)
	return validateStruct(r)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshRequest) Validate() error {
	return validateStruct(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	return validateStruct(r)
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type LoginResponse struct {
	TokenPair
	User *User `json:"user"`
}

type CreateUserRequest struct {
	Email         string `json:"email" validate:"required,email,max=254"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Role          Role   `json:"role" validate:"required,oneof=super_admin rector accountant auxiliary_accountant"`
	InstitutionID string `json:"institution_id" validate:"omitempty,uuid"`
}

func (r *CreateUserRequest) Validate() error {
	trimSpace(&r.Email)
	return validateStruct(r)
}

type UpdateUserRequest struct {
	IDParam
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=super_admin rector accountant auxiliary_accountant"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive  *bool   `json:"is_active"`
}

func (r *UpdateUserRequest) Validate() error {
	return validateStruct(r)
}

type ListUsersRequest struct {
	ListParams
	Role     string `query:"role" validate:"omitempty,oneof=super_admin rector accountant auxiliary_accountant"`
	IsActive string `query:"is_active" validate:"omitempty,oneof=true false"`
	Search   string `query:"search" validate:"omitempty,max=100"`
}

func (r *ListUsersRequest) Validate() error {
	return validateStruct(r)
}

// ActiveFilter returns nil when no is_active filter was given.
func (r *ListUsersRequest) ActiveFilter() *bool {
	return parseBoolFilter(r.IsActive)
}
