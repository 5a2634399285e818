package middleware // middleware provides reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware

	"github.com/AmitSaha9928/book-stack/internal/utils" // session token parsing
)

// JWTAuth returns an Echo middleware that validates a Bearer session
// token and injects the token's subject and role claims into the
// request context. Verification needs only the signing secret; there
// is no server-side session state and no database round-trip. This
// middleware should wrap protected routes so that handlers can read the
// authenticated user via c.Get("user_id") and c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer " followed by the JWT. Anything
			// else means the request is unauthenticated.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, role, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Expose the verified identity to handlers and downstream
			// middleware such as the role gate and rate limiter.
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}
