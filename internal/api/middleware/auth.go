package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/metrics"
	"github.com/wisdombase/wisdombase-api/internal/core/auth"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// IdentityKey is the echo.Context key holding the authenticated *domain.Identity.
const IdentityKey = "identity"

// Authenticator resolves a bearer token to an active identity.
type Authenticator interface {
	CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error)
}

// Auth validates the bearer token and injects the resolved identity into the
// context. Errors are returned untouched for the HTTP error handler to map.
func Auth(guard Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.ExtractToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			identity, err := guard.CurrentIdentity(c.Request().Context(), token)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// Identity returns the identity stored by Auth, or nil.
func Identity(c echo.Context) *domain.Identity {
	identity, _ := c.Get(IdentityKey).(*domain.Identity)
	return identity
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingHeader):
		return "missing_header"
	case errors.Is(err, domain.ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrMalformedSubject):
		return "invalid_token"
	case errors.Is(err, domain.ErrTokenTypeMismatch):
		return "wrong_type"
	case errors.Is(err, domain.ErrUnknownOrInactive):
		return "unknown_or_inactive"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
