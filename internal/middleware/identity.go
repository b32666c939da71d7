package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/costumerent/costume-market/internal/utils"
)

// Identify records the caller's user id when a valid bearer token is
// present but never rejects a request.  It runs ahead of the rate limiter
// so that limits can be keyed per user on public routes too.
func Identify(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				if id, err := utils.ParseAccessToken(secret, raw); err == nil {
					c.Set(UserIDKey, id)
				}
			}
			return next(c)
		}
	}
}

// userKey renders the caller for use in redis keys; "anon" when unknown.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
