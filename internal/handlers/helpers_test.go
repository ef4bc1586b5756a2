package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/middleware"
	"github.com/lynk-app/backend/validators"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

// newTestContext builds an authenticated JSON request context
func newTestContext(e *echo.Echo, method, target, body string, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if !userID.IsZero() {
		c.Set(middleware.ContextUserID, userID)
	}
	return c, rec
}
