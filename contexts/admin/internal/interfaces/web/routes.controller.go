package web

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

func NewRoutesController(echo *echo.Echo) *RoutesController {
	return &RoutesController{echo: echo}
}

// RoutesController lists all routes known to the web router.
type RoutesController struct {
	echo *echo.Echo
}

type route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
	// Group is the first path segment, routes of the same section share it.
	Group     string `json:"group"`
	HasParams bool   `json:"hasParams"`
}

func (ctrl *RoutesController) Index() echo.HandlerFunc {
	return func(c echo.Context) error {
		echoRoutes := ctrl.echo.Routes()

		// sort routes by path and then by method
		sort.Slice(echoRoutes, func(i, j int) bool {
			if echoRoutes[i].Path < echoRoutes[j].Path {
				return true
			}

			if echoRoutes[i].Path == echoRoutes[j].Path {
				return echoRoutes[i].Method < echoRoutes[j].Method
			}

			return false
		})

		routes := make([]route, 0, len(echoRoutes))

		for _, r := range echoRoutes {
			if r.Method == echo.RouteNotFound {
				continue
			}

			name := r.Name
			if strings.Contains(name, "func") { // echo falls back to the handler's function name
				name = ""
			}

			routes = append(routes, route{
				Method:    r.Method,
				Path:      r.Path,
				Name:      name,
				Group:     group(r.Path),
				HasParams: strings.Contains(r.Path, ":"),
			})
		}

		return c.JSON(http.StatusOK, routes)
	}
}

// group returns the section a path belongs to, e.g. "books" for /admin/api/books/:key.
func group(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	for i, s := range segments {
		if s == "api" && i+1 < len(segments) {
			return segments[i+1]
		}
	}

	return segments[0]
}
