package auth

import (
	"fachschaft-protokolle/internal/api"
	"fachschaft-protokolle/internal/environment"
	"fachschaft-protokolle/internal/logging"
	"fachschaft-protokolle/internal/middlewares"
	"fachschaft-protokolle/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Api defines the set of authentication-related endpoints exposed by the system.
//
// @Summary Authentication API
type Api interface {

	// Login issues a token for valid credentials
	Login(c *gin.Context)

	// RefreshToken creates a new access token after validating the old one
	RefreshToken(c *gin.Context)
}

// Controller wires environment dependencies with authentication service methods.
// It fulfills the Api interface and delegates business logic to AuthService.
type Controller struct {
	*environment.Env
	*AuthService
}

// ensure Controller implements Api
var _ Api = &Controller{}

// Login expects {"data": {"username": ..., "password": ...}}.
//
// @ID login
// @Summary Log in
// @Tags auth
// @Router /login [post]
// @Success 200 {object} api.RestJsonLoginResponse
// @Failure 401 {object} api.RestJsonErrorResponse
func (ac *Controller) Login(c *gin.Context) {
	logType := logging.GetLogType("auth")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ac.LogErrorf(logType, "Error reading login info: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	request := api.GenericRequest{}
	err = request.Load(body)
	if err != nil {
		ac.LogErrorf(logType, "Error loading request data: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading login info"))
		return
	}

	user := models.User{}
	err = request.DecodeDataTo(&user)
	if err != nil {
		ac.LogErrorf(logType, "Error loading user data: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse("Error reading user info"))
		return
	}
	user.Prepare()
	err = user.Validate()
	if err != nil {
		ac.LogErrorf(logType, "Error validating user: %v", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponsef("Error validating User: %v", err))
		return
	}

	err = ac.DoLogin(c.Request.Context(), &user)
	if err != nil {
		ac.LogWarnf(logType, "login of %s failed", user.Username)
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Login not successful"))
		return
	}

	//issue token
	token, _, err := middlewares.GenerateToken(c.Request.Context(), []byte(middlewares.SigningKey), user.ID, user.Username, user.RoleList())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error creating JWT"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", token))
}

func (ac *Controller) RefreshToken(c *gin.Context) {
	tokenHeader := c.Request.Header.Get("Authorization")

	b := "Bearer "
	t := strings.Split(tokenHeader, b)
	if len(t) < 2 {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "An authorization token was not supplied"})
		c.Abort()
		return
	}

	token, err := middlewares.ValidateToken(t[1], middlewares.SigningKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, api.NewErrorResponse(err.Error()))
		return
	}

	claims := token.Claims.(*middlewares.Claims)
	claims.ExpiresAt = time.Now().Add(43200 * time.Second).Unix()
	claims.IssuedAt = time.Now().Unix()

	// Create the token
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := newToken.SignedString([]byte(middlewares.SigningKey))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, api.NewErrorResponse("Error refreshing JWT"))
		return
	}
	c.JSON(http.StatusOK, api.NewGenericResponse(api.Success, "", tokenString))

}
