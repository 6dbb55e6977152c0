package middlewares_test

import (
	"context"
	"fachschaft-protokolle/internal/middlewares"
	"github.com/gin-gonic/gin"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims, ok := middlewares.CurrentClaims(c)
		if ok {
			c.String(http.StatusOK, claims.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/", handlers...)
	return r
}

func token(t *testing.T, roles ...string) string {
	t.Helper()
	s, _, err := middlewares.GenerateToken(context.Background(), []byte(middlewares.SigningKey), 1, "anna", roles)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return s
}

func TestAuthHandler(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		roles    []string
		expected int
	}{
		{name: "no header", header: "", expected: http.StatusForbidden},
		{name: "missing prefix", header: token(t), expected: http.StatusForbidden},
		{name: "invalid token", header: "Bearer abc.def.ghi", expected: http.StatusForbidden},
		{name: "valid token", header: "Bearer " + token(t), expected: http.StatusOK},
		{name: "matching role", header: "Bearer " + token(t, "protokoll"), roles: []string{"protokoll"}, expected: http.StatusOK},
		{name: "admin passes role check", header: "Bearer " + token(t, "admin"), roles: []string{"protokoll"}, expected: http.StatusOK},
		{name: "missing role", header: "Bearer " + token(t, "kasse"), roles: []string{"protokoll"}, expected: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(middlewares.AuthHandler(tt.roles...))
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if len(tt.header) > 0 {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.expected {
				t.Errorf("got status %d, want %d", w.Code, tt.expected)
			}
			if w.Code == http.StatusOK && w.Body.String() != "anna" {
				t.Errorf("expected claims of anna, got %q", w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	r := newRouter(middlewares.NewRateLimiter(4).Middleware())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	// burst of two
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status codes %v", codes)
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		method      string
		code        int
		credentials string
	}{
		{name: "any origin", origin: "*", method: http.MethodGet, code: http.StatusOK},
		{name: "frontend origin", origin: "https://fs.example.org", method: http.MethodGet, code: http.StatusOK, credentials: "true"},
		{name: "preflight", origin: "https://fs.example.org", method: http.MethodOptions, code: http.StatusNoContent, credentials: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.CORSMiddleware(tt.origin))
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/", nil))

			if w.Code != tt.code {
				t.Errorf("got status %d, want %d", w.Code, tt.code)
			}
			h := w.Header()
			if h.Get("Access-Control-Allow-Origin") != tt.origin || h.Get("Access-Control-Allow-Credentials") != tt.credentials {
				t.Errorf("unexpected headers %v", h)
			}
			if h.Get("Access-Control-Expose-Headers") != "Content-Disposition" {
				t.Errorf("Content-Disposition must be exposed, got %v", h)
			}
			if tt.method == http.MethodGet && h.Get("Cache-Control") != "no-store" {
				t.Errorf("expected no-store, got %q", h.Get("Cache-Control"))
			}
		})
	}
}
