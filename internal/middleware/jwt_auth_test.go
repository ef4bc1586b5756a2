package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID primitive.ObjectID, expiry time.Duration, secret string) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestParseTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signToken(t, userID, time.Hour, testSecret)

	got, err := ParseToken(token, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token := signToken(t, primitive.NewObjectID(), -time.Hour, testSecret)
	_, err := ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token := signToken(t, primitive.NewObjectID(), time.Hour, "other-secret")
	_, err := ParseToken(token, testSecret)
	assert.Error(t, err)
}

func TestJWTAuthMiddleware(t *testing.T) {
	e := echo.New()
	userID := primitive.NewObjectID()
	token := signToken(t, userID, time.Hour, testSecret)

	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		got, ok := UserIDFromContext(c)
		assert.True(t, ok)
		assert.Equal(t, userID, got)
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddlewareMissingHeader(t *testing.T) {
	e := echo.New()
	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	err := handler(e.NewContext(req, rec))

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
