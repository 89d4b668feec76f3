package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newHeaderRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := newHeaderRouter()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"absent", "", false},
		{"client id kept", "rush-web.42_a", true},
		{"too long", strings.Repeat("a", requestIDMaxLen+1), false},
		{"log injection", "abc\nlevel=error", false},
		{"spaces", "a b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ping", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			if got == "" || got != w.Body.String() {
				t.Fatalf("header %q and context %q must match", got, w.Body.String())
			}
			if tt.keep && got != tt.header {
				t.Errorf("expected %q to be kept, got %q", tt.header, got)
			}
			if !tt.keep && got == tt.header {
				t.Errorf("expected %q to be replaced", tt.header)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := newHeaderRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", w.Header().Get("Cache-Control"))
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain http")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS behind a TLS proxy")
	}
}
