package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/vitality-backend/internal/http/handlers"
	"github.com/yungbote/vitality-backend/internal/http/middleware"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Mode           string // debug|release
	AllowedOrigins []string
	Tracing        bool

	AuthMiddleware        *middleware.AuthMiddleware
	HealthHandler         *handlers.HealthHandler
	AuthHandler           *handlers.AuthHandler
	VideoHandler          *handlers.VideoHandler
	RecommendationHandler *handlers.RecommendationHandler
	AgentHandler          *handlers.AgentHandler
	ResearchHandler       *handlers.ResearchHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if strings.EqualFold(cfg.Mode, "release") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(cfg.Log))
	if cfg.Tracing {
		router.Use(otelgin.Middleware("vitality-backend"))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
	}

	// Protected
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// Videos
	protected.GET("/videos/search", cfg.VideoHandler.Search)
	protected.GET("/videos/:id", cfg.VideoHandler.Get)
	protected.POST("/videos/analyze", cfg.VideoHandler.AnalyzeByURL)
	protected.POST("/videos/:id/analyze", cfg.VideoHandler.Analyze)
	protected.POST("/videos/:id/vectorize", cfg.VideoHandler.Vectorize)
	protected.PATCH("/videos/:id", cfg.VideoHandler.Update)
	protected.POST("/videos/:id/interactions", cfg.RecommendationHandler.RecordInteraction)
	// Recommendations
	protected.GET("/recommendations", cfg.RecommendationHandler.Recommendations)
	// Agents
	protected.POST("/agents/:kind", cfg.AgentHandler.Dispatch)
	// Research
	protected.POST("/research/compare", cfg.ResearchHandler.StartComparison)
	protected.GET("/research/:id", cfg.ResearchHandler.GetStatus)
	// Products
	protected.POST("/products/supplements", cfg.ResearchHandler.FindSupplements)

	return router
}
