package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

var testCSRFSecret = []byte("test-secret-key-for-csrf")

func setupCSRFRouter(cfg CSRFConfig) *gin.Engine {
	if cfg.Secret == "" {
		cfg.Secret = string(testCSRFSecret)
	}
	r := gin.New()
	pages := r.Group("/:locale", CSRF(cfg))
	pages.GET("/contact", func(c *gin.Context) { c.String(http.StatusOK, GetCSRFToken(c)) })
	pages.POST("/contact", func(c *gin.Context) { c.String(http.StatusOK, "sent") })
	r.POST("/api/v1/contact", func(c *gin.Context) { c.String(http.StatusOK, "api") })
	return r
}

// issueToken performs the form GET and returns the rendered token and cookie.
func issueToken(t *testing.T, r *gin.Engine) (string, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en/contact", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET form status = %d", w.Code)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == csrfCookieName {
			return w.Body.String(), ck
		}
	}
	t.Fatal("no csrf cookie issued")
	return "", nil
}

func TestCSRF_IssuesSignedCookie(t *testing.T) {
	r := setupCSRFRouter(CSRFConfig{Secure: true})
	token, ck := issueToken(t, r)

	if token != ck.Value || !validToken(token, testCSRFSecret) {
		t.Errorf("rendered token %q does not match a valid cookie %q", token, ck.Value)
	}
	if ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteStrictMode || ck.Path != "/" {
		t.Errorf("cookie attributes = %+v", ck)
	}

	// A valid cookie is reused, an invalid one replaced.
	req := httptest.NewRequest(http.MethodGet, "/en/contact", nil)
	req.AddCookie(ck)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if len(w.Result().Cookies()) != 0 || w.Body.String() != token {
		t.Error("valid cookie should be reused without reissuing")
	}

	req = httptest.NewRequest(http.MethodGet, "/en/contact", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "forged.value"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if len(w.Result().Cookies()) != 1 || w.Body.String() == "forged.value" {
		t.Error("invalid cookie should be replaced")
	}
}

func TestCSRF_Submission(t *testing.T) {
	r := setupCSRFRouter(CSRFConfig{})
	token, ck := issueToken(t, r)
	other, _ := newToken(testCSRFSecret)
	foreign, _ := newToken([]byte("another-secret"))

	tests := []struct {
		name   string
		cookie string
		field  string
		header string
		want   int
	}{
		{"form field", ck.Value, token, "", http.StatusOK},
		{"header", ck.Value, "", token, http.StatusOK},
		{"no cookie", "", token, "", http.StatusForbidden},
		{"no token", ck.Value, "", "", http.StatusForbidden},
		{"different valid token", ck.Value, other, "", http.StatusForbidden},
		{"equal tokens from another secret", foreign, foreign, "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"name": {"Sara"}}
			if tt.field != "" {
				form.Set(csrfFormField, tt.field)
			}
			req := httptest.NewRequest(http.MethodPost, "/en/contact", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set(csrfHeaderName, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d; want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCSRF_OnFailureRendersPage(t *testing.T) {
	r := setupCSRFRouter(CSRFConfig{OnFailure: func(c *gin.Context) {
		c.String(c.Writer.Status(), "rejected: "+c.GetString("csrf_failure"))
	}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/en/contact", nil))

	if w.Code != http.StatusForbidden || w.Body.String() != "rejected: CSRF token missing" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestCSRF_APINotWrapped(t *testing.T) {
	w := httptest.NewRecorder()
	setupCSRFRouter(CSRFConfig{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/contact", nil))
	if w.Code != http.StatusOK {
		t.Errorf("API status = %d; want 200 without a token", w.Code)
	}
}

func TestCSRF_MissingSecret(t *testing.T) {
	r := gin.New()
	r.Use(CSRF(CSRFConfig{Secret: "  "}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want 500", w.Code)
	}
}

func TestValidToken(t *testing.T) {
	good, _ := newToken(testCSRFSecret)
	for _, tok := range []string{"", "nodot", ".sig", "nonce.", "abc.def"} {
		if validToken(tok, testCSRFSecret) {
			t.Errorf("validToken(%q) = true", tok)
		}
	}
	if !validToken(good, testCSRFSecret) {
		t.Error("freshly issued token rejected")
	}
}
