package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/vitality-backend/internal/pkg/ctxutil"
	"github.com/yungbote/vitality-backend/internal/services/agents"
)

type AgentHandler struct {
	dispatcher *agents.Dispatcher
}

func NewAgentHandler(dispatcher *agents.Dispatcher) *AgentHandler {
	return &AgentHandler{dispatcher: dispatcher}
}

func (ah *AgentHandler) Dispatch(c *gin.Context) {
	var req struct {
		SessionID string             `json:"session_id"`
		Message   string             `json:"message"`
		Product   *agents.ProductRef `json:"product,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("invalid request body"))
		return
	}

	out, err := ah.dispatcher.Dispatch(c.Request.Context(), c.Param("kind"), agents.Input{
		UserID:    ctxutil.UserID(c.Request.Context()),
		SessionID: req.SessionID,
		Message:   req.Message,
		Product:   req.Product,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, out)
}
