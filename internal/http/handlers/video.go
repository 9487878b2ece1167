package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	"github.com/yungbote/vitality-backend/internal/services"
)

type VideoHandler struct {
	videos services.VideoService
}

func NewVideoHandler(videos services.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func (vh *VideoHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	video, err := vh.videos.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, video)
}

func (vh *VideoHandler) AnalyzeByURL(c *gin.Context) {
	var req struct {
		VideoURL     string `json:"video_url"`
		Caption      string `json:"caption"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	video, err := vh.videos.AnalyzeByURL(dbctx.Context{Ctx: c.Request.Context()}, userID, req.VideoURL, req.Caption, req.ThumbnailURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, video)
}

func (vh *VideoHandler) Analyze(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	video, err := vh.videos.Analyze(dbctx.Context{Ctx: c.Request.Context()}, userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, video)
}

func (vh *VideoHandler) Vectorize(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	video, err := vh.videos.Vectorize(dbctx.Context{Ctx: c.Request.Context()}, userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, video)
}

func (vh *VideoHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req services.VideoUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	video, err := vh.videos.Update(dbctx.Context{Ctx: c.Request.Context()}, userID, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, video)
}

func (vh *VideoHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		RespondError(c, http.StatusBadRequest, "missing_query", fmt.Errorf("q parameter required"))
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	results, err := vh.videos.Search(dbctx.Context{Ctx: c.Request.Context()}, query, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"results": results})
}
