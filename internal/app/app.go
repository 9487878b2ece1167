package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/db"
	"github.com/yungbote/vitality-backend/internal/http/middleware"
	"github.com/yungbote/vitality-backend/internal/http/server"
	"github.com/yungbote/vitality-backend/internal/observability"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Router   *gin.Engine

	httpServer    *server.Server
	traceShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "dev"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(pg.DB(), log)
	serviceset, err := wireServices(pg.DB(), log, cfg, clients, reposet)
	if err != nil {
		log.Sync()
		return nil, err
	}

	if serviceset.Graph.Enabled() {
		serviceset.Graph.EnsureSchema(context.Background())
	}

	traceShutdown, tracing, err := observability.SetupTracing(context.Background(), log, "vitality-backend")
	if err != nil {
		log.Warn("tracing setup failed, continuing without", "error", err)
		traceShutdown = func(context.Context) error { return nil }
		tracing = false
	}

	handlerset := wireHandlers(log, cfg, pg, clients, serviceset)
	authMW := middleware.NewAuthMiddleware(log, serviceset.Auth)
	router := wireRouter(log, cfg, handlerset, authMW, tracing)

	return &App{
		Log:           log,
		DB:            pg.DB(),
		Cfg:           cfg,
		Clients:       clients,
		Repos:         reposet,
		Services:      serviceset,
		Router:        router,
		httpServer:    server.New(log, ":"+cfg.Port, router),
		traceShutdown: traceShutdown,
	}, nil
}

// Run starts the worker pool and serves HTTP until the server stops.
func (a *App) Run() error {
	a.Services.Worker.Start()
	return a.httpServer.Start()
}

// Shutdown drains HTTP, the worker queue, and external clients.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.Log.Warn("http shutdown", "error", err)
	}
	if err := a.Services.Worker.Shutdown(ctx); err != nil {
		a.Log.Warn("worker shutdown", "error", err)
	}
	if a.Clients.Neo4j != nil {
		closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := a.Clients.Neo4j.Close(closeCtx); err != nil {
			a.Log.Warn("neo4j close", "error", err)
		}
		cancel()
	}
	if a.Clients.VideoAI != nil {
		_ = a.Clients.VideoAI.Close()
	}
	if a.Clients.Vision != nil {
		_ = a.Clients.Vision.Close()
	}
	if a.Clients.Bucket != nil {
		_ = a.Clients.Bucket.Close()
	}
	if a.Clients.EmbedCache != nil {
		_ = a.Clients.EmbedCache.Close()
	}
	if err := a.traceShutdown(ctx); err != nil {
		a.Log.Warn("trace shutdown", "error", err)
	}
	a.Log.Sync()
}
