package routes

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/webforge-ai/webforge/api/rest/v1"
	"github.com/webforge-ai/webforge/api/rest/v1/handlers"
)

func generateRoutes(deps Deps, router gin.IRoutes) {
	generateHandler := handlers.NewGenerateHandler(deps.Agent)
	router.POST("/generate", v1.ErrorHandler(generateHandler.HandleGenerate))
	router.POST("/chat", v1.ErrorHandler(generateHandler.HandleChat))
}
