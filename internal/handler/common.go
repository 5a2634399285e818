// Package handler defines the HTTP handlers for the book catalog API.
// Handlers bind request DTOs, run repository calls under a bounded
// timeout, and map repository outcomes onto the response envelope.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AmitSaha9928/book-stack/internal/model"
)

// reqTimeout bounds every storage call made on behalf of a request.
const reqTimeout = 5 * time.Second

// apiResponse is the envelope returned by every endpoint. Error is a
// flag, not a message: expected business outcomes such as a duplicate
// registration or an already-removed rating come back with a conflict
// status but Error=false, and callers branch on the flag rather than on
// the HTTP class alone.
type apiResponse struct {
	Status  int         `json:"status"`
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func respond(c echo.Context, status int, isErr bool, msg string, data interface{}) error {
	return c.JSON(status, apiResponse{Status: status, Error: isErr, Message: msg, Data: data})
}

// field pairs a mandatory input with its wire name for validation.
type field struct {
	name  string
	empty bool
}

// firstMissing walks the fields in declaration order and returns the
// name of the first empty one, or "" when all are present. Validation
// order is fixed so the same bad payload always names the same field.
func firstMissing(fields []field) string {
	for _, f := range fields {
		if f.empty {
			return f.name
		}
	}
	return ""
}

// reqCtx derives the bounded context used for repository calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), reqTimeout)
}

// authedUserID reads the user id placed in the context by the JWT
// middleware.
func authedUserID(c echo.Context) (uint64, error) {
	uid, ok := c.Get("user_id").(uint64)
	if !ok || uid == 0 {
		return 0, errors.New("unauthenticated")
	}
	return uid, nil
}

// isAdmin reports whether the authenticated caller carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Health reports liveness for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
