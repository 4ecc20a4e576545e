package dateformats

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/dateformat"
)

type Response struct {
	Formats []string `json:"formats"`
	Default string   `json:"default"`
}

func RegisterRoutes(g *echo.Group) {
	g.GET("/date-formats", List)
}

// List handles GET /date-formats
func List(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Formats: dateformat.Vocabulary,
		Default: dateformat.Default,
	})
}
