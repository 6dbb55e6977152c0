package routes_test

import (
	"fachschaft-protokolle/internal/auth"
	"fachschaft-protokolle/internal/config"
	"fachschaft-protokolle/internal/constants"
	"fachschaft-protokolle/internal/protokolle"
	"fachschaft-protokolle/internal/routes"
	"github.com/gin-gonic/gin"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	registry := map[int]any{
		constants.Auth:       &auth.Controller{},
		constants.Protokolle: &protokolle.Controller{},
	}
	c := &config.Configuration{RateLimitPerMinute: 10, AllowedOrigin: "*"}
	c.Storage.MediaRoot = t.TempDir()
	c.Storage.MediaUrl = "/media/"

	routes.InitRouter(engine, registry, c)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, expected := range []string{
		"POST /login",
		"POST /refresh",
		"GET /status",
		"GET /heartbeat",
		"GET /meetings/:id/protokoll",
		"POST /meetings/:id/protokoll",
		"DELETE /meetings/:id/protokoll",
		"POST /meetings/:id/protokoll/approve",
		"POST /meetings/:id/protokoll/mail",
		"GET /meetings/:id/protokoll/download/:format",
		"PUT /meetings/:id/protokoll/attachments/order",
		"DELETE /meetings/:id/protokoll/attachments/:aid",
		"GET /public/meetings/:id/protokoll/:format",
		"GET /media/attachments/*filepath",
	} {
		if !registered[expected] {
			t.Errorf("route %s not registered", expected)
		}
	}

	// protected routes require a token
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/meetings/1/protokoll", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("got status %d without token, want 403", w.Code)
	}
}
