package init

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func registerAdminRoutes(admin *AdminContext) {
	di := admin.globalContainer

	di.AdminRouter.GET("/routes", admin.routesController.Index()).Name = "admin.routes"

	di.AdminRouter.GET("/sections", func(c echo.Context) error {
		return c.JSON(http.StatusOK, admin.Sections())
	}).Name = "admin.sections"
}
