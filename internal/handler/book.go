package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/model"
	"github.com/AmitSaha9928/book-stack/internal/repository"
)

// BookHandler bundles dependencies for book endpoints. Books are mostly
// plain CRUD; the one rule they carry is title uniqueness, which is
// checked against every row including soft-deleted ones.
type BookHandler struct {
	Books      *repository.BookRepo
	Categories *repository.CategoryRepo
}

func NewBookHandler(b *repository.BookRepo, cat *repository.CategoryRepo) *BookHandler {
	return &BookHandler{Books: b, Categories: cat}
}

type createBookReq struct {
	Title      string  `json:"bookTitle"`
	Summary    *string `json:"bookSummary"`
	Price      float64 `json:"bookPrice"`
	PageCount  uint32  `json:"amountOfPage"`
	AuthorName string  `json:"authorName"`
	CategoryID uint64  `json:"categoryId"`
	BookImg    string  `json:"bookImg"`
}

// Create inserts a book owned by the authenticated user. A title that
// already exists anywhere in the table, deleted books included, is a
// non-error conflict.
func (h *BookHandler) Create(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	var req createBookReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Title = strings.TrimSpace(req.Title)
	if missing := firstMissing([]field{
		{"bookTitle", req.Title == ""},
		{"bookPrice", req.Price == 0},
		{"amountOfPage", req.PageCount == 0},
		{"authorName", req.AuthorName == ""},
		{"categoryId", req.CategoryID == 0},
		{"bookImg", req.BookImg == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Categories.GetActiveByID(ctx, req.CategoryID); err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "category doesn't exist", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "category lookup failed", nil)
	}

	exists, err := h.Books.TitleExists(ctx, req.Title)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "lookup failed", nil)
	}
	if exists {
		return respond(c, http.StatusConflict, false, "book title already exists", nil)
	}

	id, err := h.Books.Create(ctx, model.Book{
		Title:           req.Title,
		Summary:         req.Summary,
		Price:           req.Price,
		PageCount:       req.PageCount,
		AuthorName:      req.AuthorName,
		InsertionUserID: uid,
		CategoryID:      req.CategoryID,
		BookImg:         req.BookImg,
	})
	if err != nil {
		if err == repository.ErrDuplicate {
			return respond(c, http.StatusConflict, false, "book title already exists", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "create book failed", nil)
	}
	created, err := h.Books.GetActiveByID(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "load book failed", nil)
	}
	return respond(c, http.StatusCreated, false, "book created successfully", created)
}

// GetAll returns all active books.
func (h *BookHandler) GetAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListActive(ctx)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "list of all the books", books)
}

// GetRecent returns the newest active books; ?limit caps the result
// (default 10).
func (h *BookHandler) GetRecent(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListRecent(ctx, limit)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "recent books", books)
}

// GetByID returns one active book.
func (h *BookHandler) GetByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	book, err := h.Books.GetActiveByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "book not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "book details", book)
}

// GetByUser returns the active books added by a user.
func (h *BookHandler) GetByUser(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListActiveByUser(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "books by user", books)
}

// Update rewrites a book's fields. Only the user who added the book or
// an admin may edit it. A rename re-checks title uniqueness against
// every row, deleted books included, same as creation; keeping the
// current title skips the check.
func (h *BookHandler) Update(c echo.Context) error {
	uid, err := authedUserID(c)
	if err != nil {
		return respond(c, http.StatusUnauthorized, true, "unauthorized", nil)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	var req createBookReq
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, true, "invalid body", nil)
	}
	req.Title = strings.TrimSpace(req.Title)
	if missing := firstMissing([]field{
		{"bookTitle", req.Title == ""},
		{"bookPrice", req.Price == 0},
		{"amountOfPage", req.PageCount == 0},
		{"authorName", req.AuthorName == ""},
		{"categoryId", req.CategoryID == 0},
		{"bookImg", req.BookImg == ""},
	}); missing != "" {
		return respond(c, http.StatusUnprocessableEntity, true, missing+" is missing", nil)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	current, err := h.Books.GetActiveByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "book not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	if current.InsertionUserID != uid && !isAdmin(c) {
		return respond(c, http.StatusForbidden, true, "forbidden", nil)
	}

	if req.Title != current.Title {
		exists, err := h.Books.TitleExists(ctx, req.Title)
		if err != nil {
			return respond(c, http.StatusInternalServerError, true, "lookup failed", nil)
		}
		if exists {
			return respond(c, http.StatusConflict, false, "book title already exists", nil)
		}
	}
	if req.CategoryID != current.CategoryID {
		if _, err := h.Categories.GetActiveByID(ctx, req.CategoryID); err != nil {
			if err == sql.ErrNoRows {
				return respond(c, http.StatusNotFound, true, "category doesn't exist", nil)
			}
			return respond(c, http.StatusInternalServerError, true, "category lookup failed", nil)
		}
	}

	updated, err := h.Books.Update(ctx, id, model.Book{
		Title:      req.Title,
		Summary:    req.Summary,
		Price:      req.Price,
		PageCount:  req.PageCount,
		AuthorName: req.AuthorName,
		CategoryID: req.CategoryID,
		BookImg:    req.BookImg,
	})
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return respond(c, http.StatusNotFound, true, "book not found", nil)
		case repository.ErrDuplicate:
			return respond(c, http.StatusConflict, false, "book title already exists", nil)
		default:
			return respond(c, http.StatusInternalServerError, true, "update failed", nil)
		}
	}
	return respond(c, http.StatusOK, false, "book updated successfully", updated)
}

// GetByCategory returns the active books of a category.
func (h *BookHandler) GetByCategory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	books, err := h.Books.ListActiveByCategory(ctx, id)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "books by category", books)
}

// Remove soft-deletes a book. The row and its title stay behind;
// ratings and reviews of the book become unreachable through book reads
// but keep their own lifecycle state.
func (h *BookHandler) Remove(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := h.Books.SoftDelete(ctx, id); err {
	case nil:
		return respond(c, http.StatusOK, false, "book deleted successfully", nil)
	case repository.ErrAlreadyRemoved:
		return respond(c, http.StatusConflict, false, "book already removed", nil)
	case sql.ErrNoRows:
		return respond(c, http.StatusNotFound, true, "book not found", nil)
	default:
		return respond(c, http.StatusInternalServerError, true, "delete failed", nil)
	}
}
