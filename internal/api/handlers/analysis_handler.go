package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadrohq/kadro/internal/services"
)

type AnalysisHandler struct {
	analyses services.AnalysisService
}

func NewAnalysisHandler(analyses services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses}
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.analyses.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnalysisHandler) Regenerate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.analyses.Regenerate(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
