package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadrohq/kadro/internal/services"
	"github.com/kadrohq/kadro/internal/utils"
)

type UploadHandler struct {
	tokens  services.TokenService
	uploads services.UploadService
}

func NewUploadHandler(tokens services.TokenService, uploads services.UploadService) *UploadHandler {
	return &UploadHandler{tokens: tokens, uploads: uploads}
}

type presignRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// Presign hands the interview client a direct PUT destination for a
// recording blob. Gated on a live candidate token.
func (h *UploadHandler) Presign(c *gin.Context) {
	if _, err := h.tokens.Verify(c.Request.Context(), c.Query("token")); err != nil {
		writeError(c, err)
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "UploadHandler.Presign", "invalid request body", err))
		return
	}

	dest, err := h.uploads.Presign(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dest)
}
