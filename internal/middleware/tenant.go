package middleware

import (
	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	InstitutionHeader = "X-Institution-ID"
	InstitutionQuery  = "institution_id"
)

// RequireTenant resolves the institution a request operates on. Regular
// users are pinned to their own institution; super admins choose one with
// the X-Institution-ID header or the institution_id query parameter.
func (a *AuthMiddleware) RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return a.resolveTenant(next, true)
}

// OptionalTenant is RequireTenant for routes where a super admin may act
// across all institutions.
func (a *AuthMiddleware) OptionalTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return a.resolveTenant(next, false)
}

func (a *AuthMiddleware) resolveTenant(next echo.HandlerFunc, required bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		requested, err := requestedInstitution(c)
		if err != nil {
			return err
		}

		var id uuid.UUID
		switch {
		case !p.IsSuperAdmin():
			if p.InstitutionID == nil {
				return errs.NewForbiddenError("Your account is not linked to an institution", true)
			}
			if requested != nil && *requested != *p.InstitutionID {
				return errs.NewForbiddenError("You do not have access to this institution", true)
			}
			id = *p.InstitutionID
		case requested != nil:
			id = *requested
		case required:
			return errs.NewBadRequestError("Select an institution with the "+InstitutionHeader+" header", true,
				errs.Code("INSTITUTION_REQUIRED"), nil, nil)
		default:
			return next(c)
		}

		c.Set(InstitutionIDKey, id)
		addLogFields(c, func(lc zerolog.Context) zerolog.Context {
			return lc.Str("institution_id", id.String())
		})
		return next(c)
	}
}

func requestedInstitution(c echo.Context) (*uuid.UUID, error) {
	raw := c.Request().Header.Get(InstitutionHeader)
	if raw == "" {
		raw = c.QueryParam(InstitutionQuery)
	}
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.NewBadRequestError("Invalid institution id", true, nil,
			[]errs.FieldError{{Field: InstitutionQuery, Error: "must be a valid UUID"}}, nil)
	}
	return &id, nil
}
