package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// DefaultContentSecurityPolicy allows remote content images and embedded
// YouTube players, nothing else off-site.
const DefaultContentSecurityPolicy = "default-src 'self'; img-src 'self' data: https:; " +
	"frame-src https://www.youtube.com https://www.youtube-nocookie.com; " +
	"style-src 'self' 'unsafe-inline'; script-src 'self'"

// SecureConfig selects the response hardening applied by SecureHeaders.
type SecureConfig struct {
	// Development skips the HTTPS redirect and HSTS.
	Development           bool
	SSLRedirect           bool
	ContentSecurityPolicy string
}

// SecureHeaders sets the standard hardening headers via unrolled/secure.
// Process has already written the response (an HTTPS redirect or a bad host
// rejection) when it returns an error, so the chain is just aborted.
func SecureHeaders(cfg SecureConfig, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	csp := cfg.ContentSecurityPolicy
	if csp == "" {
		csp = DefaultContentSecurityPolicy
	}
	s := secure.New(secure.Options{
		IsDevelopment:         cfg.Development,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: csp,
		SSLRedirect:           cfg.SSLRedirect,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			logger.WarnContext(c.Request.Context(), "secure headers blocked request", slog.Any("error", err))
			c.Abort()
			return
		}
		c.Next()
	}
}
