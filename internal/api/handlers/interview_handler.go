package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/services"
	"github.com/kadrohq/kadro/internal/utils"
)

type InterviewHandler struct {
	interviews services.InterviewService
	questions  services.QuestionService
}

func NewInterviewHandler(interviews services.InterviewService, questions services.QuestionService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, questions: questions}
}

func (h *InterviewHandler) List(c *gin.Context) {
	rows, err := h.interviews.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interviews": rows})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	iv, err := h.interviews.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *InterviewHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SetStatus", "invalid request body", err))
		return
	}

	if err := h.interviews.SetStatus(c.Request.Context(), id, models.InterviewStatus(req.Status)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type associateMediaRequest struct {
	VideoURL string `json:"video_url"`
	AudioURL string `json:"audio_url"`
}

// AssociateMedia is called by the interview client after recording uploads
// finish. It consumes the candidate token.
func (h *InterviewHandler) AssociateMedia(c *gin.Context) {
	var req associateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.AssociateMedia", "invalid request body", err))
		return
	}

	iv, err := h.interviews.AssociateMedia(c.Request.Context(), c.Query("token"), req.VideoURL, req.AudioURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interview_id": iv.ID})
}

type nextQuestionRequest struct {
	History []services.HistoryTurn `json:"history"`
}

func (h *InterviewHandler) NextQuestion(c *gin.Context) {
	var req nextQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.NextQuestion", "invalid request body", err))
		return
	}

	question, done, err := h.questions.NextQuestion(c.Request.Context(), req.History)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question, "done": done})
}
