package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORS(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{name: "default_expo_web", origin: "http://localhost:19006", allowed: true},
		{name: "default_metro", origin: "http://127.0.0.1:8081", allowed: true},
		{name: "default_rejects_other", origin: "https://evil.example", allowed: false},
		{name: "configured", origins: []string{"https://app.example"}, origin: "https://app.example", allowed: true},
		{name: "configured_replaces_defaults", origins: []string{"https://app.example"}, origin: "http://localhost:19006", allowed: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tc.origins))
			r.OPTIONS("/api/courses", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tc.allowed && got != tc.origin {
				t.Fatalf("unexpected allow-origin header: got=%q want=%q", got, tc.origin)
			}
			if !tc.allowed && got != "" {
				t.Fatalf("origin %q allowed: header=%q status=%d", tc.origin, got, rec.Code)
			}
		})
	}
}
