// Package handler is the HTTP layer. Each handler binds and validates a
// request payload, resolves the caller and tenant set by middleware, and
// delegates to the service layer.
package handler

import (
	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/middleware"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func principal(c echo.Context) (model.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return model.Principal{}, errs.NewUnauthorizedError("Unauthorized", false)
	}
	return p, nil
}

// tenant returns the institution resolved by RequireTenant. A route that
// forgets the middleware fails loudly rather than leaking across tenants.
func tenant(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.GetInstitutionID(c)
	if !ok {
		return uuid.Nil, errs.NewInternalServerError()
	}
	return id, nil
}

// optionalTenant returns the institution chosen by OptionalTenant, if any.
func optionalTenant(c echo.Context) *uuid.UUID {
	id, ok := middleware.GetInstitutionID(c)
	if !ok {
		return nil
	}
	return &id
}
