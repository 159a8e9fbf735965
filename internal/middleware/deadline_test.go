package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		d            time.Duration
		wantDeadline bool
	}{
		{name: "positive duration sets deadline", d: time.Second, wantDeadline: true},
		{name: "zero disables", d: 0, wantDeadline: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Deadline(tt.d))

			var got bool
			var remaining time.Duration
			r.GET("/", func(c *gin.Context) {
				var dl time.Time
				dl, got = c.Request.Context().Deadline()
				remaining = time.Until(dl)
				c.Status(http.StatusNoContent)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if got != tt.wantDeadline {
				t.Fatalf("deadline set = %v, want %v", got, tt.wantDeadline)
			}
			if got && (remaining <= 0 || remaining > tt.d) {
				t.Fatalf("remaining = %v, want within (0, %v]", remaining, tt.d)
			}
		})
	}
}
