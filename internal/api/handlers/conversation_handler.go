package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadrohq/kadro/internal/services"
	"github.com/kadrohq/kadro/internal/utils"
)

type ConversationHandler struct {
	conversations services.ConversationService
}

func NewConversationHandler(conversations services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

type appendMessageRequest struct {
	InterviewID    int64  `json:"interview_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	SequenceNumber int    `json:"sequence_number"`
}

func (h *ConversationHandler) Append(c *gin.Context) {
	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ConversationHandler.Append", "invalid request body", err))
		return
	}

	msg, err := h.conversations.Append(c.Request.Context(), req.InterviewID, req.Role, req.Content, req.SequenceNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ConversationHandler) ListByInterview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.conversations.ListByInterview(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": rows})
}
