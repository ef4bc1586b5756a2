package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/repositories"
)

// AdminOnly rejects requests whose authenticated user is not an admin.
// Must run after JWTAuthMiddleware.
func AdminOnly(userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := UserIDFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			user, err := userRepo.GetUserByID(c.Request().Context(), userID)
			if err != nil || !user.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden: admin only")
			}
			return next(c)
		}
	}
}
