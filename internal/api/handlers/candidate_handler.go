package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/services"
	"github.com/kadrohq/kadro/internal/utils"
)

const maxResumeBytes = 10 << 20

type CandidateHandler struct {
	candidates services.CandidateService
}

func NewCandidateHandler(candidates services.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

type createCandidateRequest struct {
	JobID int64  `json:"job_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *CandidateHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CandidateHandler.Create", "invalid request body", err))
		return
	}

	cand, err := h.candidates.Create(c.Request.Context(), userID, req.JobID, req.Name, req.Email)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cand)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cand, err := h.candidates.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (h *CandidateHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.candidates.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": rows})
}

type updateCandidateRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (h *CandidateHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CandidateHandler.Update", "invalid request body", err))
		return
	}

	cand, err := h.candidates.Update(c.Request.Context(), id, req.Name, req.Email, models.CandidateStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (h *CandidateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.candidates.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendLink rotates the candidate's interview token and returns the fresh
// link for the recruiter to deliver.
func (h *CandidateHandler) SendLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.candidates.SendLink(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interview_link": link})
}

func (h *CandidateHandler) UploadResume(c *gin.Context) {
	const op = "CandidateHandler.UploadResume"

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file field is required", err))
		return
	}
	if fh.Size > maxResumeBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	cand, err := h.candidates.AttachResume(c.Request.Context(), id, fh.Filename, contentType, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}
