// Package middleware contains the Echo middleware used by the
// service: gateway identity extraction, Redis-backed rate limiting
// and response caching.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// identityHeader carries the account id resolved by the upstream
// gateway.  Session verification happens there; this service only
// trusts the header and scopes rows by it.
const identityHeader = "X-User-ID"

// Identity extracts the caller's account id from the gateway header
// and stores it in the context under "user_id".  Requests without a
// valid id are rejected with 401.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(identityHeader)
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			c.Set("user_id", id)
			return next(c)
		}
	}
}

// currentUserID returns the context's account id as a string, or
// "anon" outside the identity middleware. Used for rate-limit keys.
func currentUserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(uint64); ok {
		return strconv.FormatUint(v, 10)
	}
	return "anon"
}
