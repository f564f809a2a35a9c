package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wisdombase/wisdombase-api/internal/core/ports"
)

// DocumentHandler serves the permission-gated document endpoints.
type DocumentHandler struct {
	service ports.DocumentService
}

func NewDocumentHandler(service ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// List handles GET /documents.
//
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        author_id     query     int     false  "Author id"
// @Param        is_published  query     bool    false  "Publication state"
// @Param        search        query     string  false  "Case-insensitive text in title or content"
// @Param        skip          query     int     false  "Offset"
// @Param        limit         query     int     false  "Page size (max 100)"
// @Success      200           {object}  envelope{data=documentListResponse}
// @Failure      403           {object}  errorResponse
// @Router       /documents [get]
func (h *DocumentHandler) List(c echo.Context) error {
	skip, limit, err := pageParams(c)
	if err != nil {
		return err
	}
	authorID, err := queryInt64(c, "author_id")
	if err != nil {
		return err
	}

	filter := ports.DocumentFilter{
		AuthorID: authorID,
		Search:   c.QueryParam("search"),
		Skip:     skip,
		Limit:    limit,
	}
	if raw := c.QueryParam("is_published"); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "is_published must be a boolean")
		}
		filter.Published = &published
	}

	list, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ok(c, toDocumentListResponse(list), "")
}

// Get handles GET /documents/:id.
//
// @Summary      Get a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Document id"
// @Success      200  {object}  envelope{data=documentResponse}
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id} [get]
func (h *DocumentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, toDocumentResponse(doc), "")
}

// Create handles POST /documents.
//
// @Summary      Create a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDocumentRequest  true  "New document"
// @Success      201   {object}  envelope{data=documentResponse}
// @Failure      422   {object}  errorResponse
// @Router       /documents [post]
func (h *DocumentHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createDocumentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	doc, err := h.service.Create(c.Request().Context(), actor, ports.CreateDocumentInput{
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return err
	}
	return created(c, toDocumentResponse(doc), "")
}

// Update handles PUT /documents/:id.
//
// @Summary      Update a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                    true  "Document id"
// @Param        body  body      updateDocumentRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=documentResponse}
// @Failure      404   {object}  errorResponse
// @Router       /documents/{id} [put]
func (h *DocumentHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateDocumentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	doc, err := h.service.Update(c.Request().Context(), actor, id, ports.UpdateDocumentInput{
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return err
	}
	return ok(c, toDocumentResponse(doc), "")
}

// Delete handles DELETE /documents/:id.
//
// @Summary      Delete a document
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Document id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  errorResponse
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return ok(c, nil, "Document deleted successfully")
}
