package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports process liveness
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": 1, "message": "ok"})
}
