package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/openlegalassist/backend/config"
	"github.com/openlegalassist/backend/internal/handler"
)

func Setup(
	cfg *config.Config,
	docHandler *handler.DocumentHandler,
	chatHandler *handler.ChatHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.MaxMultipartMemory = int64(cfg.Upload.MaxSizeMB) << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api")
	{
		docs := api.Group("/documents")
		{
			docs.POST("/upload", docHandler.Upload)
			docs.POST("/generate-questions", docHandler.GenerateQuestions)
			docs.POST("/generate-document", docHandler.GenerateDocument)
			docs.GET("/download/:id", docHandler.Download)
		}

		chat := api.Group("/chat")
		{
			chat.POST("/message", chatHandler.Message)
			chat.POST("/reset", chatHandler.Reset)
			chat.POST("/session", chatHandler.Session)
			chat.GET("/document-types", chatHandler.DocumentTypes)
			chat.GET("/common-questions", chatHandler.CommonQuestions)
		}

		api.GET("/health", handler.Health)
	}

	r.GET("/health", handler.Health)

	return r
}
