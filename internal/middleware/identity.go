package middleware

// identity.go holds helpers shared across middleware files. callerID
// identifies the requester for rate-limit bucket keys: the verified
// user id when JWTAuth ran earlier in the chain, the client IP for
// anonymous traffic.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// callerID returns a stable identifier for the current caller.
func callerID(c echo.Context) string {
	if uid, ok := c.Get("user_id").(uint64); ok && uid > 0 {
		return "u" + strconv.FormatUint(uid, 10)
	}
	return "ip:" + c.RealIP()
}
