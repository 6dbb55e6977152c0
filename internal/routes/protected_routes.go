package routes

import (
	"fachschaft-protokolle/internal/auth"
	"fachschaft-protokolle/internal/constants"
	"fachschaft-protokolle/internal/middlewares"
	"fachschaft-protokolle/internal/protokolle"
	"github.com/gin-gonic/gin"
)

func RegisterProtectedRoutes(r *gin.Engine, controllerRegistry map[int]any, limiter *middlewares.RateLimiter) {

	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/refresh", authApi.RefreshToken)

	authGroup := r.Group("/meetings/:id/protokoll")

	authGroup.Use(middlewares.AuthHandler(constants.RoleProtokoll))
	{
		protokolleApi := controllerRegistry[constants.Protokolle].(protokolle.Api)
		authGroup.GET("", protokolleApi.GetProtokoll)
		authGroup.GET("/sources", protokolleApi.GetSources)
		authGroup.POST("", limiter.Middleware(), protokolleApi.Generate)
		authGroup.DELETE("", protokolleApi.Delete)
		authGroup.POST("/approve", limiter.Middleware(), protokolleApi.Approve)
		authGroup.POST("/publish", protokolleApi.Publish)
		authGroup.DELETE("/publish", protokolleApi.Unpublish)
		authGroup.GET("/template", protokolleApi.GetTemplate)
		authGroup.POST("/pad", protokolleApi.OpenPad)
		authGroup.POST("/mail", middlewares.AuthHandler(constants.RoleMail), protokolleApi.SendMail)
		authGroup.GET("/html", protokolleApi.GetHtml)
		authGroup.GET("/download/:format", protokolleApi.Download)

		// attachments
		authGroup.GET("/attachments", protokolleApi.GetAttachments)
		authGroup.POST("/attachments", limiter.Middleware(), protokolleApi.UploadAttachment)
		authGroup.PUT("/attachments/order", protokolleApi.ReorderAttachments)
		authGroup.DELETE("/attachments/:aid", protokolleApi.DeleteAttachment)
	}
}
