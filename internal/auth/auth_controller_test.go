package auth_test

import (
	"context"
	"encoding/json"
	"fachschaft-protokolle/internal/api"
	"fachschaft-protokolle/internal/auth"
	"fachschaft-protokolle/internal/database"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/middlewares"
	"fachschaft-protokolle/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type userRepository struct {
	database.NullRepository
	users map[string]models.User
}

func (u *userRepository) FindUserLoginCredentials(_ context.Context, username string, user *models.User) error {
	found, ok := u.users[username]
	if !ok {
		return database.ErrRecordNotFound
	}
	*user = found
	return nil
}

func newController(t *testing.T) *auth.Controller {
	t.Helper()
	hash, err := models.Hash("geheim")
	if err != nil {
		t.Fatal(err)
	}
	env := environment.Null()
	env.Repository = &userRepository{users: map[string]models.User{
		"anna": {Model: models.Model{ID: 5}, Username: "anna", Password: string(hash), Roles: "protokoll, mail"},
	}}
	return &auth.Controller{Env: env, AuthService: &auth.AuthService{Env: env}}
}

func login(ctrl *auth.Controller, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	ctrl.Login(c)
	return w
}

func TestLogin(t *testing.T) {
	ctrl := newController(t)

	w := login(ctrl, `{"data":{"username":" anna ","password":"geheim"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	var response api.RestJsonLoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshalling error: %v", err)
	}
	token, err := middlewares.ValidateToken(response.Data, middlewares.SigningKey)
	if err != nil {
		t.Fatalf("invalid token: %v", err)
	}
	claims := token.Claims.(*middlewares.Claims)
	if claims.UserId != 5 || claims.Username != "anna" || !cmp.Equal(claims.Roles, []string{"protokoll", "mail"}) {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLoginFailures(t *testing.T) {
	ctrl := newController(t)

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{name: "wrong password", body: `{"data":{"username":"anna","password":"falsch"}}`, expected: http.StatusUnauthorized},
		{name: "unknown user", body: `{"data":{"username":"bernd","password":"geheim"}}`, expected: http.StatusUnauthorized},
		{name: "missing password", body: `{"data":{"username":"anna"}}`, expected: http.StatusUnprocessableEntity},
		{name: "malformed json", body: `{"data":`, expected: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := login(ctrl, tt.body); w.Code != tt.expected {
				t.Errorf("got status %d, want %d", w.Code, tt.expected)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	ctrl := newController(t)
	token, _, err := middlewares.GenerateToken(context.Background(), []byte(middlewares.SigningKey), 5, "anna", []string{"protokoll"})
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/refresh", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	ctrl.RefreshToken(c)

	if w.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", w.Code)
	}
}
