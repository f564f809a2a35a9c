package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/metrics"
	"github.com/wisdombase/wisdombase-api/internal/core/auth"
)

// RequireRole allows the request only when the authenticated identity holds
// role. Must run after Auth.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.RequireRole(Identity(c), role); err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return err
			}
			return next(c)
		}
	}
}

// RequirePermission allows the request only when the authenticated identity
// holds permission or the wildcard. Must run after Auth.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.RequirePermission(Identity(c), permission); err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return err
			}
			return next(c)
		}
	}
}
