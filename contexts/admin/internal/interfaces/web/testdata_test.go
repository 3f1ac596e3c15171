package web_test

import (
	"github.com/labstack/echo/v4"
)

// newTestRouter is a helper for unit tests, by returning a valid web router.
func newTestRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	return e
}
