package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/middleware"
	"github.com/mosaic-hrd/website/internal/pkg"
)

// errorPages lists the statuses with their own errors/<code>.html; any other
// status renders the 500 page.
var errorPages = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusForbidden:           true,
	http.StatusNotFound:            true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
}

func errorTemplate(code int) string {
	if !errorPages[code] {
		code = http.StatusInternalServerError
	}
	return "errors/" + strconv.Itoa(code) + ".html"
}

// renderError answers with the localized error page for browsers and the
// JSON envelope for API paths and JSON clients.
func renderError(c *gin.Context, code int, message string) {
	if wantsJSON(c) {
		c.JSON(code, pkg.Response{Code: code, Message: message})
		return
	}
	renderHTMLErrorPage(c, code)
}

// wantsJSON is true under /api/, and for an Accept header that names JSON
// without HTML or names neither HTML nor */*. A missing Accept gets HTML.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := strings.ToLower(strings.TrimSpace(c.GetHeader("Accept")))
	if accept == "" {
		return false
	}
	html := strings.Contains(accept, "text/html")
	if strings.Contains(accept, "application/json") {
		return !html
	}
	return !html && !strings.Contains(accept, "*/*")
}

// renderHTMLErrorPage falls back to plain text when no renderer is installed
// or the template panics.
func renderHTMLErrorPage(c *gin.Context, code int) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(code, "text/plain; charset=utf-8", []byte(strconv.Itoa(code)+" "+statusText(code)))
		}
	}()
	c.HTML(code, errorTemplate(code), middleware.ErrorPageData(c, code))
}

// errorPage returns a handler rendering the error page for code. It backs
// the CSRF, rate limit and locale guards.
func errorPage(code int) gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, code, strings.ToLower(statusText(code)))
	}
}

func statusText(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return "Error"
}
