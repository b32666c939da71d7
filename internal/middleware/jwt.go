package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/costumerent/costume-market/internal/utils"
)

// UserIDKey is the echo context key holding the authenticated user id as a
// uint64.  It is set by Identify and JWTAuth.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the token's subject in the context under UserIDKey.  The provided
// secret must match the one used when issuing tokens.  Requests without a
// valid token are answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(UserIDKey, id)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id stored by JWTAuth or Identify.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok && id != 0
}

func bearer(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}
