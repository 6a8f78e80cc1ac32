package middleware

import (
	"github.com/deppfellow/edufinance/internal/logger"
	"github.com/deppfellow/edufinance/internal/model"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	UserIDKey        = "user_id"
	UserRoleKey      = "user_role"
	PrincipalKey     = "principal"
	InstitutionIDKey = "institution_id"
	LoggerKey        = "logger"
)

type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext stores a request-scoped logger carrying the request id,
// route, client ip and New Relic trace ids. Auth and tenant middleware add
// their fields to it later.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, contextLogger)
			return next(c)
		}
	}
}

// setLogger stores l on the echo context and on the request context, where
// services pick it up with zerolog.Ctx.
func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

// addLogFields extends the request logger with more fields.
func addLogFields(c echo.Context, fields func(zerolog.Context) zerolog.Context) {
	setLogger(c, fields(GetLogger(c).With()).Logger())
}

// GetLogger returns the request logger, or a no-op logger outside a request.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}

// GetPrincipal returns the authenticated caller set by RequireAuth.
func GetPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(PrincipalKey).(model.Principal)
	return p, ok
}

// GetInstitutionID returns the tenant resolved by RequireTenant or
// OptionalTenant.
func GetInstitutionID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(InstitutionIDKey).(uuid.UUID)
	return id, ok
}
