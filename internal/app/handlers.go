package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vitality-backend/internal/db"
	"github.com/yungbote/vitality-backend/internal/http/handlers"
	"github.com/yungbote/vitality-backend/internal/http/middleware"
	"github.com/yungbote/vitality-backend/internal/http/server"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type Handlers struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Video          *handlers.VideoHandler
	Recommendation *handlers.RecommendationHandler
	Agent          *handlers.AgentHandler
	Research       *handlers.ResearchHandler
}

func wireHandlers(log *logger.Logger, cfg Config, pg *db.PostgresService, c Clients, s Services) Handlers {
	return Handlers{
		Health:         handlers.NewHealthHandler(log, healthChecks(cfg, pg, c, s)),
		Auth:           handlers.NewAuthHandler(s.Auth),
		Video:          handlers.NewVideoHandler(s.Videos),
		Recommendation: handlers.NewRecommendationHandler(s.Recommendations, s.Graph),
		Agent:          handlers.NewAgentHandler(s.Agents),
		Research:       handlers.NewResearchHandler(s.Research, s.Products),
	}
}

func healthChecks(cfg Config, pg *db.PostgresService, c Clients, s Services) []handlers.HealthCheck {
	checks := []handlers.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return pg.Ping() }},
		{Name: "config", Check: func(ctx context.Context) error {
			if len(cfg.MissingRequired) > 0 {
				return fmt.Errorf("missing env vars: %v", cfg.MissingRequired)
			}
			return nil
		}},
	}

	pineconeCheck := handlers.HealthCheck{Name: "pinecone"}
	if c.Pinecone != nil {
		indexName := cfg.PineconeIndexName
		pineconeCheck.Check = func(ctx context.Context) error {
			_, err := c.Pinecone.DescribeIndex(ctx, indexName)
			return err
		}
	}
	checks = append(checks, pineconeCheck)

	neo4jCheck := handlers.HealthCheck{Name: "neo4j", Optional: true}
	if c.Neo4j != nil {
		neo4jCheck.Check = func(ctx context.Context) error {
			return c.Neo4j.Driver.VerifyConnectivity(ctx)
		}
	}
	checks = append(checks, neo4jCheck)

	return checks
}

func wireRouter(log *logger.Logger, cfg Config, h Handlers, am *middleware.AuthMiddleware, tracing bool) *gin.Engine {
	mode := "debug"
	if cfg.Mode == "prod" {
		mode = "release"
	}
	return server.NewRouter(server.RouterConfig{
		Log:                   log,
		Mode:                  mode,
		AllowedOrigins:        cfg.AllowedOrigins,
		Tracing:               tracing,
		AuthMiddleware:        am,
		HealthHandler:         h.Health,
		AuthHandler:           h.Auth,
		VideoHandler:          h.Video,
		RecommendationHandler: h.Recommendation,
		AgentHandler:          h.Agent,
		ResearchHandler:       h.Research,
	})
}
