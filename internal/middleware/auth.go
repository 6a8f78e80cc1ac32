package middleware

import (
	"strings"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Authenticator verifies access tokens. It is implemented by
// service.AuthService.
type Authenticator interface {
	Authenticate(raw string) (model.Principal, error)
}

type AuthMiddleware struct {
	server *server.Server
	auth   Authenticator
}

func NewAuthMiddleware(s *server.Server, auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{server: s, auth: auth}
}

// RequireAuth accepts `Authorization: Bearer <access token>` and stores the
// caller on the echo context.
func (a *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return errs.NewUnauthorizedError("Missing bearer token", true)
		}

		p, err := a.auth.Authenticate(raw)
		if err != nil {
			GetLogger(c).Warn().Err(err).Msg("rejected access token")
			return err
		}

		c.Set(PrincipalKey, p)
		c.Set(UserIDKey, p.UserID.String())
		c.Set(UserRoleKey, string(p.Role))
		addLogFields(c, func(lc zerolog.Context) zerolog.Context {
			return lc.Str("user_id", p.UserID.String()).Str("user_role", string(p.Role))
		})

		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequirePermission rejects callers whose role lacks perm. It must run
// after RequireAuth.
func (a *AuthMiddleware) RequirePermission(perm model.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := GetPrincipal(c)
			if !ok {
				return errs.NewUnauthorizedError("Unauthorized", false)
			}
			if !p.Role.Can(perm) {
				GetLogger(c).Warn().Str("permission", string(perm)).Msg("permission denied")
				return errs.NewForbiddenError("You do not have permission to perform this action", true)
			}
			return next(c)
		}
	}
}
