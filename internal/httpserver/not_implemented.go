package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// NotImplemented answers the cart and order prefixes, which have no handlers.
func NotImplemented(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "not implemented")
}
