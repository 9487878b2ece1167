package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

// HealthCheck probes one dependency. Optional components report
// "disabled" instead of failing the check when not configured.
type HealthCheck struct {
	Name     string
	Check    func(ctx context.Context) error
	Optional bool
}

type HealthHandler struct {
	log    *logger.Logger
	checks []HealthCheck
}

func NewHealthHandler(log *logger.Logger, checks []HealthCheck) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), checks: checks}
}

func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true
	for _, check := range hh.checks {
		if check.Check == nil {
			components[check.Name] = "disabled"
			continue
		}
		if err := check.Check(ctx); err != nil {
			components[check.Name] = err.Error()
			if !check.Optional {
				healthy = false
			}
			hh.log.Warn("health check failed", "component", check.Name, "error", err)
			continue
		}
		components[check.Name] = "ok"
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "components": components})
}
