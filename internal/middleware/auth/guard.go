package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/velmark/storefront/internal/logging"
	"github.com/velmark/storefront/internal/models"
	"github.com/velmark/storefront/internal/tokens"
)

const userIDKey = "user_id"

type Guard struct {
	DB    *gorm.DB
	Codec *tokens.Codec
}

// RequireSignIn reads the raw Authorization header value as the session
// token. Clients send the token bare, without a "Bearer " scheme. A bad
// token always gets an explicit 401, never a dropped request.
func (g *Guard) RequireSignIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_signin")

		token := c.Request().Header.Get(echo.HeaderAuthorization)
		if token == "" {
			l.Warn("signin_denied", "status", 401, "reason", "missing_token")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
		}

		userID, err := g.Codec.Parse(token)
		if err != nil {
			l.Warn("signin_denied", "status", 401, "reason", "invalid_token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(userIDKey, userID)
		return next(c)
	}
}

// RequireAdmin stacks after RequireSignIn. The role is re-read from the
// database on every request; a role claim inside the token would survive a
// downgrade, so none is ever trusted. Both failure branches share the 401
// status and differ only in message.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_admin")

		userID := UserID(c)

		var user models.User
		if err := g.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
			l.Warn("admin_denied", "status", 401, "reason", "user_not_found", "user_id", userID)
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		}

		if user.Role != models.RoleAdmin {
			l.Warn("admin_denied", "status", 401, "reason", "not_admin", "user_id", userID)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
		}

		return next(c)
	}
}

// UserID returns the id attached by RequireSignIn, zero when absent.
func UserID(c echo.Context) uint {
	if v, ok := c.Get(userIDKey).(uint); ok {
		return v
	}
	return 0
}
