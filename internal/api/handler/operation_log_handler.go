package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// OperationLogHandler serves the admin-only audit trail endpoints.
type OperationLogHandler struct {
	service ports.OperationLogService
}

func NewOperationLogHandler(service ports.OperationLogService) *OperationLogHandler {
	return &OperationLogHandler{service: service}
}

// List handles GET /logs.
//
// @Summary      List operation logs
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        user_id        query     int     false  "Actor id"
// @Param        action         query     string  false  "LOGIN, LOGOUT, CREATE, UPDATE, DELETE"
// @Param        resource_type  query     string  false  "auth, user, document"
// @Param        skip           query     int     false  "Offset"
// @Param        limit          query     int     false  "Page size (max 100)"
// @Success      200            {object}  envelope{data=operationLogListResponse}
// @Failure      403            {object}  errorResponse
// @Router       /logs [get]
func (h *OperationLogHandler) List(c echo.Context) error {
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	userID, err := queryInt64(c, "user_id")
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), ports.OperationLogFilter{
		UserID:       userID,
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		Skip:         skip,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	return ok(c, toOperationLogListResponse(list), "")
}

// Get handles GET /logs/:id.
//
// @Summary      Get an operation log
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Log id"
// @Success      200  {object}  envelope{data=operationLogResponse}
// @Failure      404  {object}  errorResponse
// @Router       /logs/{id} [get]
func (h *OperationLogHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, toOperationLogResponse(entry), "")
}

// ListByUser handles GET /logs/user/:user_id.
//
// @Summary      List a user's operation logs
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      int  true   "User id"
// @Param        skip     query     int  false  "Offset"
// @Param        limit    query     int  false  "Page size (max 100)"
// @Success      200      {object}  envelope{data=operationLogListResponse}
// @Failure      404      {object}  errorResponse
// @Router       /logs/user/{user_id} [get]
func (h *OperationLogHandler) ListByUser(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	list, err := h.service.ListByUser(c.Request().Context(), userID, skip, limit)
	if err != nil {
		return err
	}
	return ok(c, toOperationLogListResponse(list), "")
}

// Delete handles DELETE /logs/:id.
//
// @Summary      Delete an operation log
// @Tags         logs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Log id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  errorResponse
// @Router       /logs/{id} [delete]
func (h *OperationLogHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return ok(c, nil, "Operation log deleted successfully")
}

// DeleteBatch handles DELETE /logs with a JSON array of ids as body.
//
// @Summary      Delete operation logs in batch
// @Tags         logs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []int  true  "Log ids"
// @Success      200   {object}  envelope{data=deleteBatchData}
// @Failure      400   {object}  errorResponse
// @Router       /logs [delete]
func (h *OperationLogHandler) DeleteBatch(c echo.Context) error {
	var ids []int64
	if err := (&echo.DefaultBinder{}).BindBody(c, &ids); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON array of ids")
	}
	n, err := h.service.DeleteBatch(c.Request().Context(), ids)
	if err != nil {
		return err
	}
	return ok(c, deleteBatchData{Deleted: n}, fmt.Sprintf("Deleted %d operation logs", n))
}
