package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextUserID is the echo context key holding the authenticated user id
const ContextUserID = "userID"

// JWTAuthMiddleware checks for a valid bearer token and stores the
// authenticated user id in the request context.
func JWTAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			userID, err := ParseToken(parts[1], jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ContextUserID, userID)
			return next(c)
		}
	}
}

// ParseToken verifies an HS256 token and extracts the user id claim.
// Shared by the HTTP middleware and the websocket handshake.
func ParseToken(tokenString, jwtSecret string) (primitive.ObjectID, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !token.Valid {
		return primitive.NilObjectID, jwt.ErrTokenInvalidClaims
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}

// UserIDFromContext returns the authenticated user id set by the middleware
func UserIDFromContext(c echo.Context) (primitive.ObjectID, bool) {
	id, ok := c.Get(ContextUserID).(primitive.ObjectID)
	return id, ok
}
