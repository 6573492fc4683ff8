package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	userIDKey = "auth_user_id"
	claimsKey = "auth_claims"
)

// Middleware verifies the Bearer token on every request and stores the
// authenticated user id on the echo context.
func Middleware(mgr *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := mgr.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			uid, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}
			c.Set(userIDKey, uid)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by Middleware.
func UserID(c echo.Context) (uuid.UUID, bool) {
	uid, ok := c.Get(userIDKey).(uuid.UUID)
	return uid, ok
}

// ClaimsFrom returns the verified claims set by Middleware.
func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsKey).(*Claims)
	return claims, ok
}
