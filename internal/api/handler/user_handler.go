package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// UserHandler serves the admin-only user management endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Offset"             minimum(0)
// @Param        limit  query     int  false  "Page size (max 100)" minimum(1) maximum(100)
// @Success      200    {object}  envelope{data=userListResponse}
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	list, err := h.service.List(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return ok(c, toUserListResponse(list), "")
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  envelope{data=userResponse}
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, toUserResponse(user), "")
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  envelope{data=userResponse}
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), actor, ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Nickname: req.Nickname,
		Roles:    req.Roles,
	})
	if err != nil {
		return err
	}
	return created(c, toUserResponse(user), "")
}

// Update handles PUT /users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=userResponse}
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), actor, id, ports.UpdateUserInput{
		Email:    req.Email,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
		Roles:    req.Roles,
	})
	if err != nil {
		return err
	}
	return ok(c, toUserResponse(user), "")
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  envelope
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ok(c, nil, fmt.Sprintf("User %s deleted successfully", user.Username))
}

// ToggleStatus handles PUT /users/:id/status.
//
// @Summary      Activate or deactivate a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  envelope{data=userStatusData}
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id}/status [put]
func (h *UserHandler) ToggleStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.ToggleStatus(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}

	state := "inactive"
	if user.IsActive {
		state = "active"
	}
	return ok(c, userStatusData{IsActive: user.IsActive}, "User status changed to "+state)
}
