package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
)

// Limiter abstracts the Redis fixed-window counter.
type Limiter interface {
	Allow(ctx context.Context, scope, caller string) (bool, error)
}

// RateLimit throttles a route group per caller IP. When the limiter backend
// is unreachable the request passes through.
func RateLimit(limiter Limiter, scope string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), scope, c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limit check failed, allowing request")
				return next(c)
			}
			if !ok {
				return domain.ErrRateLimited
			}
			return next(c)
		}
	}
}
