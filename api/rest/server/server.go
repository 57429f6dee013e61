package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/webforge-ai/webforge/api/rest/v1/middleware"
)

type Server struct {
	Addr   string
	Engine *gin.Engine

	httpServer *http.Server
}

func NewServer(addr string, allowedOrigins []string, ratePerSecond float64, rateBurst int) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.RateLimit(ratePerSecond, rateBurst))

	return &Server{
		Addr:   addr,
		Engine: engine,
	}
}

func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
