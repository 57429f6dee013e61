package routes

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/webforge-ai/webforge/api/rest/v1"
	"github.com/webforge-ai/webforge/api/rest/v1/handlers"
)

func appRoutes(deps Deps, router gin.IRoutes) {
	appHandler := handlers.NewAppHandler(deps.Apps, deps.Chats)

	router.GET("/apps", v1.ErrorHandler(appHandler.HandleListApps))
	router.POST("/apps", v1.ErrorHandler(appHandler.HandleCreateApp))
	router.GET("/apps/:id", v1.ErrorHandler(appHandler.HandleGetApp))
	router.DELETE("/apps/:id", v1.ErrorHandler(appHandler.HandleDeleteApp))

	router.GET("/chats", v1.ErrorHandler(appHandler.HandleListChats))
	router.POST("/chats", v1.ErrorHandler(appHandler.HandleCreateChat))
}
