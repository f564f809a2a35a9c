package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wisdombase/wisdombase-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Adds the Bearer challenge to every 401.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "data": null, "message": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if code == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Success: false, Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, validation, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrMissingHeader):
		return http.StatusUnauthorized, "Not authenticated"
	case errors.Is(err, domain.ErrMalformedHeader):
		return http.StatusUnauthorized, "Invalid authentication credentials"
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrTokenTypeMismatch),
		errors.Is(err, domain.ErrMalformedSubject):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, domain.ErrUnknownOrInactive):
		return http.StatusUnauthorized, "User not found or inactive"
	case errors.Is(err, domain.ErrInactiveAccount):
		return http.StatusForbidden, "User is inactive"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Permission denied"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrLogNotFound):
		return http.StatusNotFound, "Operation log not found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "Username already exists"
	case errors.Is(err, domain.ErrEmailExists):
		return http.StatusConflict, "Email already exists"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "Too many failed login attempts, try again later"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}
