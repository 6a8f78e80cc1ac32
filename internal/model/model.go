// Package model holds the domain types shared by the repository, service
// and handler layers, together with their request payloads and the pure
// business rules that do not need a database (roles, payment ledger).
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base carries the columns every table has.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ListParams are the common paging query parameters.
type ListParams struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

func (p *ListParams) Validate() error {
	return validateStruct(p)
}

const DefaultPageSize = 50

// Normalize applies the default page size.
func (p ListParams) Normalize() ListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page is a paginated list response.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPage never serializes items as null.
func NewPage[T any](items []T, total int, p ListParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}

// IDParam binds the :id path segment.
type IDParam struct {
	ID string `param:"id" json:"-" validate:"required,uuid"`
}

func (p *IDParam) Validate() error {
	return validateStruct(p)
}

// UUID returns the parsed id; callers validate first.
func (p *IDParam) UUID() uuid.UUID {
	return uuid.MustParse(p.ID)
}

// EmptyRequest is used by endpoints without input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// CleanString trims and collapses inner whitespace.
func CleanString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanOptional returns nil for blank input.
func CleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := CleanString(*s)
	if v == "" {
		return nil
	}
	return &v
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeOptionalEmail returns nil for blank input.
func normalizeOptionalEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := NormalizeEmail(*email)
	if e == "" {
		return nil
	}
	return &e
}

func parseBoolFilter(v string) *bool {
	switch v {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	default:
		return nil
	}
}
