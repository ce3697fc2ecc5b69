package middleware

// identity.go holds the identity resolution shared by middleware files.
// The rate limiter keys buckets per user where possible and falls back
// to "anon" for unauthenticated traffic.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID returns the user identifier stored on the context by
// JWTAuth, or "anon" when the request is unauthenticated.  JWT numeric
// subjects arrive as float64 or string depending on the issuer, so both
// are handled.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			if t > 0 {
				return strconv.FormatUint(uint64(t), 10)
			}
		case uint64:
			if t > 0 {
				return strconv.FormatUint(t, 10)
			}
		}
	}
	return "anon"
}
