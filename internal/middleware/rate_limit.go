package middleware

import (
	"time"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{server: s}
}

// RecordRateLimitHit sends a RateLimitHit custom event to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint, ip string) {
	r.server.LoggerService.RecordCustomEvent("RateLimitHit", map[string]interface{}{
		"endpoint": endpoint,
		"ip":       ip,
	})
}

// Global limits every client ip to server.requests_per_second.
func (r *RateLimitMiddleware) Global() echo.MiddlewareFunc {
	rps := r.server.Config.Server.RequestsPerSecond
	return r.limiter(rate.Limit(rps), int(rps)*2)
}

// Login is the stricter per-ip limiter of the login endpoint.
func (r *RateLimitMiddleware) Login() echo.MiddlewareFunc {
	return r.limiter(rate.Limit(r.server.Config.Auth.LoginRateLimit), 5)
}

func (r *RateLimitMiddleware) limiter(limit rate.Limit, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = 1
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Unable to identify client", false)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path(), identifier)
			GetLogger(c).Warn().Str("ip", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests, slow down")
		},
	})
}
