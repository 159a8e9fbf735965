package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	csrfCookieName = "_csrf_token"
	csrfFormField  = "_csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfContextKey = "csrf_token"
)

// CSRFConfig configures the double-submit cookie check used by the HTML forms
// (contact and join-us). The JSON API is not wrapped.
type CSRFConfig struct {
	Secret string
	// Secure marks the cookie HTTPS-only; set it in release mode.
	Secure bool
	// OnFailure renders a rejected submission. The status is already 403
	// when it runs. Nil writes a JSON envelope.
	OnFailure gin.HandlerFunc
}

// CSRF issues a signed token cookie on safe requests and requires the same
// token in the "_csrf_token" form field or the X-CSRF-Token header on unsafe
// ones.
//
// Token format: hex(nonce) "." base64url(HMAC-SHA256(secret, hex(nonce))).
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	secret := []byte(strings.TrimSpace(cfg.Secret))
	if len(secret) == 0 {
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code": http.StatusInternalServerError, "message": "csrf secret is required", "data": nil,
			})
		}
	}
	reject := func(c *gin.Context, reason string) {
		c.Status(http.StatusForbidden)
		if cfg.OnFailure != nil {
			c.Set("csrf_failure", reason)
			cfg.OnFailure(c)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": http.StatusForbidden, "message": reason, "data": nil,
		})
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			token, err := c.Cookie(csrfCookieName)
			if err != nil || !validToken(token, secret) {
				token, err = newToken(secret)
				if err != nil {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				http.SetCookie(c.Writer, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					Secure:   cfg.Secure,
					SameSite: http.SameSiteStrictMode,
				})
			}
			c.Set(csrfContextKey, token)
			c.Next()
			return
		}

		cookie, err := c.Cookie(csrfCookieName)
		if err != nil || cookie == "" {
			reject(c, "CSRF token missing")
			return
		}
		submitted := c.PostForm(csrfFormField)
		if submitted == "" {
			submitted = c.GetHeader(csrfHeaderName)
		}
		if submitted == "" {
			reject(c, "CSRF token missing")
			return
		}
		if !validToken(cookie, secret) || subtle.ConstantTimeCompare([]byte(cookie), []byte(submitted)) != 1 {
			reject(c, "CSRF token invalid")
			return
		}
		c.Set(csrfContextKey, cookie)
		c.Next()
	}
}

// GetCSRFToken returns the token for the current request, for templates.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfContextKey)
}

func newToken(secret []byte) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	n := hex.EncodeToString(nonce)
	return n + "." + sign(n, secret), nil
}

func sign(nonce string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validToken(token string, secret []byte) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(sign(nonce, secret)))
}
