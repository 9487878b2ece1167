package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
	"github.com/yungbote/vitality-backend/internal/utils"
)

type Config struct {
	Mode string // dev|prod
	Port string

	JWTSecretKey      string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	AllowedOrigins    []string
	PineconeIndexName string

	// MissingRequired lists required vars absent at startup; the
	// healthcheck reports them and prod startup fails on them.
	MissingRequired []string
}

// requiredVars are grouped by the component that needs them. Optional
// integrations (neo4j, redis, tavily, rainforest, tracing) validate
// their own env at client construction.
var requiredVars = map[string][]string{
	"postgres": {"POSTGRES_PASSWORD"},
	"openai":   {"OPENAI_API_KEY"},
	"pinecone": {"PINECONE_API_KEY", "PINECONE_INDEX_NAME"},
	"auth":     {"JWT_SECRET_KEY"},
}

func LoadConfig(log *logger.Logger) (Config, error) {
	mode := strings.ToLower(utils.GetEnv("APP_MODE", "dev", log))

	var missing []string
	for component, vars := range requiredVars {
		for _, v := range vars {
			if strings.TrimSpace(os.Getenv(v)) == "" {
				missing = append(missing, v)
				log.Warn("required env var not set", "component", component, "var", v)
			}
		}
	}
	if len(missing) > 0 && mode == "prod" {
		return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	accessTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 7*86400, log)

	var origins []string
	if raw := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Mode:              mode,
		Port:              utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:      utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:    time.Duration(accessTTL) * time.Second,
		RefreshTokenTTL:   time.Duration(refreshTTL) * time.Second,
		AllowedOrigins:    origins,
		PineconeIndexName: utils.GetEnv("PINECONE_INDEX_NAME", "", log),
		MissingRequired:   missing,
	}, nil
}
