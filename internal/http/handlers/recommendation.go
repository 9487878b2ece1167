package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vitality-backend/internal/data/graph"
	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	"github.com/yungbote/vitality-backend/internal/services"
)

const (
	defaultRecommendationCount = 10
	maxRecommendationCount     = 50
	defaultGraphWeight         = 0.5
)

// interactionWeights maps interaction kinds to graph edge scores.
var interactionWeights = map[string]float64{
	"view":     1,
	"complete": 2,
	"like":     3,
	"share":    5,
}

type RecommendationHandler struct {
	recs  services.RecommendationService
	graph *graph.Store
}

func NewRecommendationHandler(recs services.RecommendationService, g *graph.Store) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, graph: g}
}

func (rh *RecommendationHandler) Recommendations(c *gin.Context) {
	count := defaultRecommendationCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_count", fmt.Errorf("count must be a positive integer"))
			return
		}
		if n > maxRecommendationCount {
			n = maxRecommendationCount
		}
		count = n
	}

	graphWeight := defaultGraphWeight
	if raw := c.Query("graph_weight"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_graph_weight", fmt.Errorf("graph_weight must be a number"))
			return
		}
		graphWeight = w
	}

	userID := ctxutil.UserID(c.Request.Context())
	results, err := rh.recs.HybridRecommendations(dbctx.Context{Ctx: c.Request.Context()}, userID, count, graphWeight)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recommendations": results})
}

func (rh *RecommendationHandler) RecordInteraction(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Kind string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	weight, ok := interactionWeights[req.Kind]
	if !ok {
		RespondError(c, http.StatusBadRequest, "invalid_kind", fmt.Errorf("kind must be one of view, like, share, complete"))
		return
	}
	if rh.graph == nil || !rh.graph.Enabled() {
		RespondError(c, http.StatusServiceUnavailable, "graph_unavailable", fmt.Errorf("interaction graph not configured"))
		return
	}

	userID := ctxutil.UserID(c.Request.Context())
	if err := rh.graph.RecordInteraction(c.Request.Context(), userID, id, req.Kind, weight); err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"recorded": true})
}
