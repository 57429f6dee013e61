package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/webforge-ai/webforge/api/rest/server"
	"github.com/webforge-ai/webforge/api/rest/v1/routes"
	"github.com/webforge-ai/webforge/internal/agent"
	"github.com/webforge-ai/webforge/internal/cache"
	"github.com/webforge-ai/webforge/internal/config"
	"github.com/webforge-ai/webforge/internal/export"
	"github.com/webforge-ai/webforge/internal/limiter"
	"github.com/webforge-ai/webforge/internal/models"
	"github.com/webforge-ai/webforge/internal/repository"
	"github.com/webforge-ai/webforge/internal/runner"
	"github.com/webforge-ai/webforge/internal/storage"
)

func main() {
	cfg := config.GetConfig()

	redisCache := cache.NewRedisCache(cfg.RedisAddr)
	defer redisCache.Close()

	providers := []agent.Provider{
		agent.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel),
		agent.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel),
	}
	codeAgent := agent.New(
		providers,
		redisCache,
		limiter.New(cfg.MaxConcurrentGenerations),
		cfg.CacheTTL,
		cfg.GenerationTimeout,
	)

	hub := runner.NewHub()
	builder := runner.NewProcessBuilder(cfg.ProjectsDir, cfg.PortRangeMin, cfg.PortRangeMax)
	registry := runner.NewRegistry(runner.NewMemoryStore(), builder, hub, cfg.MaxProjects, cfg.BuildTimeout)

	janitor := runner.NewJanitor(registry, cfg.ProjectMaxAge)
	janitor.Start()

	deps := routes.Deps{
		Agent:    codeAgent,
		Registry: registry,
		Hub:      hub,
		Exporter: export.NewService(newS3Storage(cfg)),
	}
	if cfg.PostgresDSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		if err := db.AutoMigrate(&models.App{}, &models.Chat{}); err != nil {
			slog.Error("failed to migrate schema", "error", err)
			os.Exit(1)
		}
		deps.Apps = repository.NewAppRepository(db)
		deps.Chats = repository.NewChatRepository(db)
	} else {
		slog.Info("no POSTGRES_DSN configured, app/chat routes disabled")
	}

	srv := server.NewServer(cfg.Addr, cfg.AllowedOrigins, cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	routes.RegisterRoutes(srv, deps)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", cfg.Addr)
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
		}
	}

	janitor.Stop()
	registry.StopAll()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

func newS3Storage(cfg *config.Config) storage.S3Storage {
	if cfg.S3Bucket == "" {
		slog.Info("no S3_BUCKET configured, project export streams archives directly")
		return nil
	}
	s3Store, err := storage.NewS3Storage(storage.S3Config{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		BucketName:      cfg.S3Bucket,
		Region:          cfg.S3Region,
	})
	if err != nil {
		slog.Error("failed to initialize S3 storage, export disabled", "error", err)
		return nil
	}
	return s3Store
}
