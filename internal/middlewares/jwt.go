package middlewares

import (
	"context"
	"fachschaft-protokolle/internal/constants"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"net/http"
	"strings"
	"time"
)

var (
	// SigningKey is replaced by the configured key on startup.
	SigningKey = "79tesfUO0vy!U1wl7c8&EavOzmO2#W"
)

// ClaimsKey is the gin context key holding the *Claims of an authorized request.
const ClaimsKey = "claims"

// AuthHandler rejects requests without a valid bearer token. If roles are
// given, the token must carry at least one of them.
func AuthHandler(authRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {

		token := c.Request.Header.Get("Authorization")

		// Check if toke in correct format
		// ie Bearer xx03xllasx
		b := "Bearer "
		if !strings.Contains(token, b) {
			if len(token) <= 0 {
				c.JSON(http.StatusForbidden, gin.H{"message": "Your request is not authorized."})
			} else {
				c.JSON(http.StatusForbidden, gin.H{"message": "Your request is not authorized. Are you missing the prefix 'Bearer'?"})
			}
			c.Abort()
			return
		}
		t := strings.Split(token, b)
		if len(t) < 2 {
			c.JSON(http.StatusForbidden, gin.H{"message": "An authorization token was not supplied"})
			c.Abort()
			return
		}

		// Validate token
		validated, err := ValidateToken(t[1], SigningKey)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": "Invalid authorization token"})
			c.Abort()
			return
		}

		claims, ok := validated.Claims.(*Claims)
		if !ok || !hasAnyRole(claims.Roles, authRoles) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Missing permission for this resource"})
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func hasAnyRole(roles []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if contains(roles, r) {
			return true
		}
	}
	return contains(roles, constants.RoleAdmin)
}

func contains(slice []string, item string) bool {
	set := make(map[string]struct{}, len(slice))
	for _, s := range slice {
		set[s] = struct{}{}
	}

	_, ok := set[item]
	return ok
}

// CurrentClaims returns the claims stored by AuthHandler.
func CurrentClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

type Claims struct {
	UserId   uint     `json:"user_id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.StandardClaims
}

func GenerateToken(ctx context.Context, key []byte, userId uint, username string, roles []string) (string, time.Time, error) {

	expiresAt := time.Now().Add(12 * time.Hour)
	claims := Claims{
		userId,
		username,
		roles,
		jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "fachschaft-protokolle",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(key)
	return tokenString, expiresAt, err
}

func ValidateToken(tokenString string, key string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(key), nil
	})

	return token, err
}
