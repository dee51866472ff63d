package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alasharulary/alash/internal/adapters/http/dto"
)

// apiPrefix marks requests that always get the JSON error envelope.
const apiPrefix = "/api/"

// notFound answers unmatched routes. Browsers navigating to an unknown page
// get the HTML error page; everything else gets the JSON envelope.
func notFound(c *gin.Context) {
	if wantsPage(c) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"Status":  http.StatusNotFound,
			"Message": http.StatusText(http.StatusNotFound),
			"Back":    "/",
		})

		return
	}

	dto.AbortWithErrorCode(c, dto.ErrorCodeNotFound, "route not found")
}

// methodNotAllowed answers a known path requested with the wrong method.
func methodNotAllowed(c *gin.Context) {
	dto.AbortWithErrorCode(c, dto.ErrorCodeMethodNotAllowed,
		c.Request.Method+" is not allowed on "+c.Request.URL.Path)
}

func wantsPage(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
