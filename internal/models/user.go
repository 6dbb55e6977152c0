package models

import (
	"errors"
	"golang.org/x/crypto/bcrypt"
	"html"
	"strings"
)

type User struct {
	Model
	Username string `gorm:"not null;unique" json:"username" mapstructure:"username"`
	Password string `gorm:"not null" json:"-" mapstructure:"password"`
	Roles    string `json:"roles" mapstructure:"-"`
}

// Hash creates a bcrypt hash of the given password.
func Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Prepare trims and escapes the username.
func (u *User) Prepare() {
	u.Username = html.EscapeString(strings.TrimSpace(u.Username))
}

func (u *User) Validate() error {
	if len(u.Username) == 0 {
		return errors.New("required username")
	}
	if len(u.Password) == 0 {
		return errors.New("required password")
	}
	return nil
}

// RoleList splits the comma separated roles.
func (u *User) RoleList() []string {
	if len(strings.TrimSpace(u.Roles)) == 0 {
		return []string{}
	}
	roles := strings.Split(u.Roles, ",")
	for i := range roles {
		roles[i] = strings.TrimSpace(roles[i])
	}
	return roles
}
