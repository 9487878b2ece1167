package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/vitality-backend/internal/clients/gcp"
	"github.com/yungbote/vitality-backend/internal/clients/openai"
	"github.com/yungbote/vitality-backend/internal/clients/pinecone"
	"github.com/yungbote/vitality-backend/internal/clients/rainforest"
	"github.com/yungbote/vitality-backend/internal/clients/redisx"
	"github.com/yungbote/vitality-backend/internal/clients/tavily"
	"github.com/yungbote/vitality-backend/internal/db"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type Clients struct {
	OpenAI      openai.Client
	Pinecone    pinecone.Client
	VectorStore pinecone.VectorStore
	VideoAI     gcp.Video
	Vision      gcp.Vision
	Bucket      gcp.Bucket
	Neo4j       *db.Neo4jClient
	EmbedCache  redisx.EmbedCache
	Tavily      tavily.Client
	Rainforest  rainforest.Client
}

// wireClients builds the external clients. Required integrations fail
// hard; optional ones (neo4j, redis, tavily, rainforest) come back nil
// when unconfigured and the dependent features degrade.
func wireClients(log *logger.Logger) (Clients, error) {
	var out Clients

	oa, err := openai.NewClient(log)
	if err != nil {
		return out, fmt.Errorf("init openai: %w", err)
	}
	out.OpenAI = oa

	pc, err := pinecone.New(log, pinecone.Config{APIKey: strings.TrimSpace(os.Getenv("PINECONE_API_KEY"))})
	if err != nil {
		return out, fmt.Errorf("init pinecone: %w", err)
	}
	out.Pinecone = pc
	store, err := pinecone.NewVectorStore(log, pc)
	if err != nil {
		return out, fmt.Errorf("init pinecone vector store: %w", err)
	}
	out.VectorStore = store

	videoAI, err := gcp.NewVideo(log)
	if err != nil {
		return out, fmt.Errorf("init video intelligence: %w", err)
	}
	out.VideoAI = videoAI

	vision, err := gcp.NewVision(log)
	if err != nil {
		return out, fmt.Errorf("init vision: %w", err)
	}
	out.Vision = vision

	bucket, err := gcp.NewBucket(log)
	if err != nil {
		return out, fmt.Errorf("init storage bucket: %w", err)
	}
	out.Bucket = bucket

	neo, err := db.NewNeo4jFromEnv(log)
	if err != nil {
		return out, fmt.Errorf("init neo4j: %w", err)
	}
	out.Neo4j = neo

	cache, err := redisx.NewEmbedCache(log)
	if err != nil {
		return out, fmt.Errorf("init redis embed cache: %w", err)
	}
	out.EmbedCache = cache

	if os.Getenv("TAVILY_API_KEY") != "" {
		tv, terr := tavily.NewClient(log)
		if terr != nil {
			return out, fmt.Errorf("init tavily: %w", terr)
		}
		out.Tavily = tv
	} else {
		log.Warn("TAVILY_API_KEY not set, research features disabled")
	}

	if os.Getenv("RAINFOREST_API_KEY") != "" {
		rf, rerr := rainforest.NewClient(log)
		if rerr != nil {
			return out, fmt.Errorf("init rainforest: %w", rerr)
		}
		out.Rainforest = rf
	} else {
		log.Warn("RAINFOREST_API_KEY not set, product lookup disabled")
	}

	return out, nil
}
