package handler

import "github.com/labstack/echo/v4"

// AsyncRoutes handles GET /routes/async. The frontend falls back to its local
// route table, so the list is empty.
//
// @Summary      Dynamic frontend routes
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /routes/async [get]
func AsyncRoutes(c echo.Context) error {
	return ok(c, []any{}, "")
}
