package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/pkg/dbctx"
	"github.com/yungbote/vitality-backend/internal/services"
)

type ResearchHandler struct {
	research services.ResearchService
	products services.ProductService
}

func NewResearchHandler(research services.ResearchService, products services.ProductService) *ResearchHandler {
	return &ResearchHandler{research: research, products: products}
}

func (rh *ResearchHandler) StartComparison(c *gin.Context) {
	var req struct {
		Products []services.ResearchProduct `json:"products"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	run, err := rh.research.StartComparison(dbctx.Context{Ctx: c.Request.Context()}, userID, req.Products)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, run)
}

func (rh *ResearchHandler) GetStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := ctxutil.UserID(c.Request.Context())
	run, err := rh.research.GetStatus(dbctx.Context{Ctx: c.Request.Context()}, userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, run)
}

func (rh *ResearchHandler) FindSupplements(c *gin.Context) {
	var req struct {
		Name   string `json:"name"`
		Dosage string `json:"dosage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}
	products, err := rh.products.FindSupplementProducts(c.Request.Context(), req.Name, req.Dosage)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}
