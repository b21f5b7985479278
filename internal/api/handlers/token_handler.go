package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadrohq/kadro/internal/services"
)

// TokenHandler serves the candidate-facing token endpoints. These are the
// only unauthenticated entry points into the platform.
type TokenHandler struct {
	tokens services.TokenService
}

func NewTokenHandler(tokens services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

func (h *TokenHandler) Verify(c *gin.Context) {
	cand, err := h.tokens.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":          true,
		"candidate_name": cand.Name,
	})
}

func (h *TokenHandler) CandidateByToken(c *gin.Context) {
	cand, err := h.tokens.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}
