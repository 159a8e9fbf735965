package middleware

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mosaic-hrd/website/internal/i18n"
)

func setupRecoveryRouter(t *testing.T, logs *strings.Builder, withTemplates bool) *gin.Engine {
	t.Helper()
	cat, err := i18n.Default()
	if err != nil {
		t.Fatalf("i18n.Default() error = %v", err)
	}

	r := gin.New()
	r.Use(Recovery(newTestLogger(logs)), Locale(cat))
	if withTemplates {
		r.SetHTMLTemplate(template.Must(template.New("errors/500.html").Parse(`{{.Status}} {{.Locale}} {{.Dir}} {{.Dict.T "errors.500"}}`)))
	}
	r.GET("/:locale/panic", func(c *gin.Context) {
		panic("test panic")
	})
	r.GET("/:locale/ok", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRecovery_NoPanicPassesThrough(t *testing.T) {
	var logs strings.Builder
	r := setupRecoveryRouter(t, &logs, false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/en/ok", nil))

	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %s", logs.String())
	}
}

func TestRecovery_JSONEnvelope(t *testing.T) {
	for _, accept := range []string{"application/json", ""} {
		t.Run("accept="+accept, func(t *testing.T) {
			var logs strings.Builder
			r := setupRecoveryRouter(t, &logs, false)
			req := httptest.NewRequest(http.MethodGet, "/en/panic", nil)
			if accept != "" {
				req.Header.Set("Accept", accept)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d; want 500", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %s", w.Body.String())
			}
			if body["message"] != "internal server error" || body["code"] != float64(500) {
				t.Errorf("body = %v", body)
			}
			if v, ok := body["data"]; !ok || v != nil {
				t.Errorf("data = %v, present %v; want explicit null", v, ok)
			}
			for _, want := range []string{"panic recovered", "test panic", "stack="} {
				if !strings.Contains(logs.String(), want) {
					t.Errorf("log missing %q:\n%s", want, logs.String())
				}
			}
		})
	}
}

func TestRecovery_LocalizedHTMLPage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/en/panic", "500 en ltr Something went wrong"},
		{"/ar/panic", "500 ar rtl حدث خطأ ما"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var logs strings.Builder
			r := setupRecoveryRouter(t, &logs, true)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Accept", "text/html,application/xhtml+xml")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d; want 500", w.Code)
			}
			if got := w.Body.String(); got != tt.want {
				t.Errorf("body = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestRecovery_PlainTextWithoutRenderer(t *testing.T) {
	var logs strings.Builder
	r := setupRecoveryRouter(t, &logs, false)
	req := httptest.NewRequest(http.MethodGet, "/en/panic", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "500") {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}
