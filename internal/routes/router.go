package routes

import (
	"fachschaft-protokolle/internal/config"
	"fachschaft-protokolle/internal/middlewares"
	"github.com/gin-gonic/gin"
)

func InitRouter(engine *gin.Engine, controllerRegistry map[int]any, c *config.Configuration) {
	InitMiddleware(engine, c.AllowedOrigin)

	limiter := middlewares.NewRateLimiter(c.RateLimitPerMinute)

	RegisterProtectedRoutes(engine, controllerRegistry, limiter)
	RegisterPublicRoutes(engine, controllerRegistry, c.Storage.MediaRoot, c.Storage.MediaUrl)
	RegisterUtilityRoutes(engine)
}

func InitMiddleware(engine *gin.Engine, allowedOrigin string) {
	engine.Use(middlewares.CORSMiddleware(allowedOrigin))
}
