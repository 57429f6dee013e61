package routes

import (
	"github.com/webforge-ai/webforge/api/rest/server"
	"github.com/webforge-ai/webforge/internal/agent"
	"github.com/webforge-ai/webforge/internal/export"
	"github.com/webforge-ai/webforge/internal/repository"
	"github.com/webforge-ai/webforge/internal/runner"
)

// Deps carries the constructed services into route registration.
type Deps struct {
	Agent    *agent.Agent
	Registry *runner.Registry
	Hub      *runner.Hub
	Exporter *export.Service

	// Optional; app/chat routes are skipped when nil.
	Apps  repository.AppRepository
	Chats repository.ChatRepository
}

func RegisterRoutes(srv *server.Server, deps Deps) {
	root := srv.Engine.Group("/")
	generateRoutes(deps, root)
	projectRoutes(deps, root)
	if deps.Apps != nil && deps.Chats != nil {
		appRoutes(deps, root)
	}
}
