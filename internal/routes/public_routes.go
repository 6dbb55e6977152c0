package routes

import (
	"fachschaft-protokolle/internal/auth"
	"fachschaft-protokolle/internal/constants"
	"fachschaft-protokolle/internal/protokolle"
	"github.com/gin-gonic/gin"
	"path"
	"path/filepath"
)

func RegisterPublicRoutes(r *gin.Engine, controllerRegistry map[int]any, mediaRoot, mediaUrl string) {
	authApi := controllerRegistry[constants.Auth].(auth.Api)
	r.POST("/login", authApi.Login)

	protokolleApi := controllerRegistry[constants.Protokolle].(protokolle.Api)
	r.GET("/public/meetings/:id/protokoll/:format", protokolleApi.PublicDownload)

	// attachments are linked from the generated documents
	r.Static(path.Join("/", mediaUrl, "attachments"), filepath.Join(mediaRoot, "attachments"))
}
