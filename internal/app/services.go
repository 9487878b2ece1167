package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/data/graph"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
	"github.com/yungbote/vitality-backend/internal/services"
	"github.com/yungbote/vitality-backend/internal/services/agents"
	"github.com/yungbote/vitality-backend/internal/utils"
)

type Services struct {
	Auth            services.AuthService
	Vectors         services.VectorService
	Health          services.HealthService
	Videos          services.VideoService
	Recommendations services.RecommendationService
	Research        services.ResearchService
	Products        services.ProductService
	Worker          services.Worker
	Graph           *graph.Store
	Agents          *agents.Dispatcher
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, c Clients, r Repos) (Services, error) {
	var out Services

	auth, err := services.NewAuthService(db, log, r.Users, r.UserTokens, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return out, fmt.Errorf("init auth service: %w", err)
	}
	out.Auth = auth

	out.Graph = graph.NewStore(c.Neo4j, log)
	out.Vectors = services.NewVectorService(log, c.OpenAI, c.VectorStore, c.EmbedCache, r.Videos)
	out.Health = services.NewHealthService(log, c.OpenAI)
	out.Videos = services.NewVideoService(log, r.Videos, c.VideoAI, c.Vision, c.Bucket, out.Health, out.Vectors)
	out.Recommendations = services.NewRecommendationService(log, out.Graph, out.Vectors, r.Videos)

	poolSize := utils.GetEnvAsInt("WORKER_POOL_SIZE", 4, log)
	queueSize := utils.GetEnvAsInt("WORKER_QUEUE_SIZE", 64, log)
	out.Worker = services.NewWorker(log, poolSize, queueSize)

	out.Research = services.NewResearchService(log, r.Research, c.Tavily, c.OpenAI, out.Worker)
	out.Products = services.NewProductService(log, c.Rainforest)

	chatAgent := agents.NewChatAgent(log, c.OpenAI, out.Vectors, r.Videos, r.Reports, r.Messages)
	researchAgent := agents.NewResearchAgent(log, c.Tavily, c.OpenAI, r.Reports, out.Vectors)
	out.Agents = agents.NewDispatcher(chatAgent, researchAgent)

	return out, nil
}
