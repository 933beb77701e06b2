package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NotFoundHandler answers unmatched routes. Paths that mention "rest" get
// a JSON body, everything else the HTML 404 page.
func NotFoundHandler(renderer *PageRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.Contains(path, "rest") {
			c.JSON(http.StatusNotFound, Response{Error: path + " not found"})
			return
		}
		renderer.Render(c, http.StatusNotFound, "404.html", gin.H{
			"Title": "Not found",
			"Path":  path,
		})
	}
}
