package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/api/middleware"
	"github.com/wisdombase/wisdombase-api/internal/core/domain"
	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// currentIdentity returns the identity injected by the Auth middleware. A
// missing identity means the route was registered without Auth.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	identity := middleware.Identity(c)
	if identity == nil {
		return nil, domain.ErrMissingHeader
	}
	return identity, nil
}

// actorFrom builds the audit actor for the current request.
func actorFrom(c echo.Context) (ports.Actor, error) {
	identity, err := currentIdentity(c)
	if err != nil {
		return ports.Actor{}, err
	}
	return ports.Actor{ID: identity.ID, Username: identity.Username, IP: c.RealIP()}, nil
}

// bindAndValidate decodes the body into req and runs the validator.
// Decode failures are 400, validation failures 422.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be a positive integer")
	}
	return id, nil
}

// pageParams reads skip/limit. Absent values are 0 and left to the service
// defaults; out of range values are rejected.
func pageParams(c echo.Context) (skip, limit int, err error) {
	if skip, err = queryInt(c, "skip"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "skip must be >= 0")
	}
	if c.QueryParam("limit") != "" && (limit < 1 || limit > 100) {
		return 0, 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "limit must be between 1 and 100")
	}
	return skip, limit, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be an integer")
	}
	return v, nil
}

func queryInt64(c echo.Context, name string) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, name+" must be an integer")
	}
	return v, nil
}

func ok(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func created(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: data, Message: message})
}
