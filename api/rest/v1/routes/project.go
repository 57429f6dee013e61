package routes

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/webforge-ai/webforge/api/rest/v1"
	"github.com/webforge-ai/webforge/api/rest/v1/handlers"
	"github.com/webforge-ai/webforge/api/rest/v1/middleware"
)

func projectRoutes(deps Deps, router gin.IRoutes) {
	projectHandler := handlers.NewProjectHandler(deps.Registry, deps.Exporter)

	router.GET("/health", v1.ErrorHandler(projectHandler.HandleHealth))
	router.GET("/ws", deps.Hub.Handle)

	router.POST("/projects", v1.ErrorHandler(projectHandler.HandleCreate))
	router.GET("/projects", v1.ErrorHandler(projectHandler.HandleList))
	router.GET("/projects/:id", middleware.ProjectIDValidator(), v1.ErrorHandler(projectHandler.HandleGet))
	router.PUT("/projects/:id/files", middleware.ProjectIDValidator(), v1.ErrorHandler(projectHandler.HandleUpdateFiles))
	router.DELETE("/projects/:id", middleware.ProjectIDValidator(), v1.ErrorHandler(projectHandler.HandleDelete))
	router.GET("/projects/:id/export", middleware.ProjectIDValidator(), v1.ErrorHandler(projectHandler.HandleExport))
	router.GET("/projects/:id/archive", middleware.ProjectIDValidator(), v1.ErrorHandler(projectHandler.HandleDownloadArchive))
}
