package auth

import (
	"context"
	"errors"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/models"
)

const usernamePasswordFalse = "username or password false"

var ErrLoginFailed = errors.New(usernamePasswordFalse)

type AuthService struct {
	*environment.Env
}

// DoLogin checks the credentials of <user> and fills in its id and roles.
func (c *AuthService) DoLogin(ctx context.Context, user *models.User) error {
	var foundUser models.User

	err := c.FindUserLoginCredentials(ctx, user.Username, &foundUser)
	if err != nil {
		return ErrLoginFailed
	}
	err = models.VerifyPassword(foundUser.Password, user.Password)
	if err != nil {
		return ErrLoginFailed
	}
	user.ID = foundUser.ID
	user.Roles = foundUser.Roles
	return nil
}
