package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/modern_shop/pkg/db"
)

// HTTPErrorHandler renders every error as {"detail": ...}. Errors that are not
// an *echo.HTTPError never leak their text to the client.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var detail any = http.StatusText(http.StatusInternalServerError)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = he.Message
		if inner, ok := he.Message.(*echo.HTTPError); ok {
			code, detail = inner.Code, inner.Message
		}
		if e, ok := detail.(error); ok {
			detail = e.Error()
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"detail": detail})
}

func session(c echo.Context) (*gorm.DB, error) {
	sess, ok := db.Session(c)
	if !ok {
		return nil, errors.New("no database session in request")
	}
	return sess, nil
}
