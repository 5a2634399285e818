package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/repository"
)

// UserHandler exposes admin-facing user management. All routes are
// gated on the ADMIN role by the router. Every response strips the
// credential digest.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

// GetAll returns all active users.
func (h *UserHandler) GetAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.ListActive(ctx)
	if err != nil {
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, sanitizeUser(u))
	}
	return respond(c, http.StatusOK, false, "list of all the users", out)
}

// GetByID returns one active user.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetActiveByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return respond(c, http.StatusNotFound, true, "user not found", nil)
		}
		return respond(c, http.StatusInternalServerError, true, "query failed", nil)
	}
	return respond(c, http.StatusOK, false, "user details", sanitizeUser(u))
}

// Remove soft-deletes a user account. The record and its content
// survive; the user simply disappears from reads and can no longer
// authenticate. Their email and username become free for a fresh
// registration.
func (h *UserHandler) Remove(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respond(c, http.StatusBadRequest, true, "invalid id", nil)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := h.Users.SoftDelete(ctx, id); err {
	case nil:
		return respond(c, http.StatusOK, false, "user deleted successfully", nil)
	case repository.ErrAlreadyRemoved:
		return respond(c, http.StatusConflict, false, "user already removed", nil)
	case sql.ErrNoRows:
		return respond(c, http.StatusNotFound, true, "user not found", nil)
	default:
		return respond(c, http.StatusInternalServerError, true, "delete failed", nil)
	}
}
