package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/repository"
)

// CategoryHandler bundles dependencies for category endpoints. Category
// names are unique among non-deleted categories, so removing one frees
// its name.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(cat *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: cat}
}

type categoryReq struct {
	Name string `json:"categoryName"`
	Code string `json:"categoryCode"`
}

// Create inserts a category; an existing non-deleted category with the
// same name is a non-error conflict.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Name = strings.TrimSpace(req.Name)
	if missing := firstMissing([]field{
		{"categoryName", req.Name == ""},
		{"categoryCode", req.Code == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.Categories.NameExists(ctx, req.Name)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "lookup failed", nil)
	}
	if exists {
		return respond(c, http.StatusConflict, false, "category already exists", nil)
	}

	id, err := h.Categories.Create(ctx, req.Name, req.Code)
	if err != nil {
		if err == repository.ErrDuplicate {
			return respond(c, http.StatusConflict, false, "category already exists", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "create category failed", nil)
	}
	created, err := h.Categories.GetActiveByID(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "load category failed", nil)
	}
	return respond(c, http.StatusCreated, false, "category created successfully", created)
}

// GetAll returns all active categories.
func (h *CategoryHandler) GetAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	cats, err := h.Categories.ListActive(ctx)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "list of all the categories", cats)
}

// GetByID returns one active category.
func (h *CategoryHandler) GetByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cat, err := h.Categories.GetActiveByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "category not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "category details", cat)
}

// Update renames a category after checking the new name is free among
// non-deleted categories.
func (h *CategoryHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Name = strings.TrimSpace(req.Name)
	if missing := firstMissing([]field{
		{"categoryName", req.Name == ""},
		{"categoryCode", req.Code == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	current, err := h.Categories.GetActiveByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "category not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	if req.Name != current.Name {
		exists, err := h.Categories.NameExists(ctx, req.Name)
		if err != nil {
			return respond(c, http.StatusInternalServerError, true, "lookup failed", nil)
		}
		if exists {
			return respond(c, http.StatusConflict, false, "category already exists", nil)
		}
	}

	updated, err := h.Categories.Update(ctx, id, req.Name, req.Code)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return respond(c, http.StatusNotFound, true, "category not found", nil)
		case repository.ErrDuplicate:
			return respond(c, http.StatusConflict, false, "category already exists", nil)
		default:
			return respond(c, http.StatusInternalServerError, true, "update failed", nil)
		}
	}
	return respond(c, http.StatusOK, false, "category updated successfully", updated)
}

// Remove soft-deletes a category. Books keep their reference; resolving
// it afterwards finds nothing active.
func (h *CategoryHandler) Remove(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := h.Categories.SoftDelete(ctx, id); err {
	case nil:
		return respond(c, http.StatusOK, false, "category deleted successfully", nil)
	case repository.ErrAlreadyRemoved:
		return respond(c, http.StatusConflict, false, "category already removed", nil)
	case sql.ErrNoRows:
		return respond(c, http.StatusNotFound, true, "category not found", nil)
	default:
		return respond(c, http.StatusInternalServerError, true, "delete failed", nil)
	}
}
