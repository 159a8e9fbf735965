package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/mosaic-hrd/website/internal/domain"
	"github.com/mosaic-hrd/website/internal/i18n"
)

const (
	localeContextKey     = "locale"
	dictionaryContextKey = "dictionary"
)

// Locale resolves the request locale and stores it, with its Dictionary, in
// the gin context. The first path segment wins when it names a supported
// locale; otherwise the Accept-Language header is negotiated.
//
// It runs on every route, including NoRoute and panics, so error pages are
// rendered in the visitor's language.
func Locale(cat *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := firstSegment(c.Request.URL.Path)
		if !cat.Supported(locale) {
			locale = cat.Negotiate(c.GetHeader("Accept-Language"))
		}
		setLocale(c, cat, locale)
		c.Next()
	}
}

// RequireLocale guards route groups mounted under /:locale. An unsupported
// value is handed to notFound and the chain is aborted.
func RequireLocale(cat *i18n.Catalog, notFound gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := c.Param("locale")
		if !cat.Supported(locale) {
			notFound(c)
			c.Abort()
			return
		}
		if GetLocale(c) != locale {
			setLocale(c, cat, locale)
		}
		c.Next()
	}
}

func setLocale(c *gin.Context, cat *i18n.Catalog, locale string) {
	c.Set(localeContextKey, locale)
	c.Set(dictionaryContextKey, cat.Dictionary(locale))
	ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("locale", locale))
	c.Request = c.Request.WithContext(ctx)
}

// GetLocale returns the resolved locale, or "" outside Locale.
func GetLocale(c *gin.Context) string {
	return c.GetString(localeContextKey)
}

// GetDictionary returns the resolved Dictionary. Outside Locale the zero
// Dictionary is returned, whose T echoes keys.
func GetDictionary(c *gin.Context) i18n.Dictionary {
	if v, ok := c.Get(dictionaryContextKey); ok {
		if d, ok := v.(i18n.Dictionary); ok {
			return d
		}
	}
	return i18n.Dictionary{}
}

// PageData merges data over the values every page template reads: locale,
// direction, dictionary, CSRF token and the current page in the other locale.
func PageData(c *gin.Context, data gin.H) gin.H {
	dict := GetDictionary(c)
	locale := dict.Locale()
	alt := domain.LocaleEN
	if locale == domain.LocaleEN {
		alt = domain.LocaleAR
	}
	var path, query string
	if c.Request != nil {
		path, query = c.Request.URL.Path, c.Request.URL.RawQuery
	}
	out := gin.H{
		"Locale":    locale,
		"Dir":       dict.Dir(),
		"Dict":      dict,
		"CSRFToken": GetCSRFToken(c),
		"Path":      path,
		"AltLocale": alt,
		"AltPath":   switchLocale(path, query, locale, alt),
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

// ErrorPageData is the template data shared by every errors/<code>.html page.
func ErrorPageData(c *gin.Context, status int) gin.H {
	return PageData(c, gin.H{"Status": status})
}

// switchLocale rewrites the leading locale segment of path to alt. Paths
// without one point at the other locale's home page.
func switchLocale(path, rawQuery, locale, alt string) string {
	rest, ok := strings.CutPrefix(path, "/"+locale)
	if locale == "" || !ok || (rest != "" && rest[0] != '/') {
		return "/" + alt
	}
	if rawQuery != "" {
		rest += "?" + rawQuery
	}
	return "/" + alt + rest
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
