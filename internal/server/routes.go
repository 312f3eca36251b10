package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(handler *Handler, allowedOrigins []string, release bool) *gin.Engine {
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(allowedOrigins))

	router.GET("/health", handler.Health)
	router.GET("/scrape", handler.Scrape)

	return router
}
