package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kadrohq/kadro/internal/api/handlers"
	"github.com/kadrohq/kadro/internal/api/middleware"
)

type Deps struct {
	JWTSecret string

	Auth         *handlers.AuthHandler
	Token        *handlers.TokenHandler
	Job          *handlers.JobHandler
	Candidate    *handlers.CandidateHandler
	Interview    *handlers.InterviewHandler
	Conversation *handlers.ConversationHandler
	Upload       *handlers.UploadHandler
	Analysis     *handlers.AnalysisHandler
	WS           *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	v1 := r.Group("/api/v1")

	// Candidate-facing endpoints. Access is gated by the interview token,
	// not a login session.
	v1.POST("/auth/login", d.Auth.Login)
	v1.POST("/tokens/verify", d.Token.Verify)
	v1.GET("/candidates/by-token", d.Token.CandidateByToken)
	v1.POST("/interview/next-question", d.Interview.NextQuestion)
	v1.POST("/conversations/messages", d.Conversation.Append)
	v1.POST("/uploads/presign", d.Upload.Presign)
	v1.POST("/interviews/media", d.Interview.AssociateMedia)

	// Recruiter and admin endpoints.
	auth := v1.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	auth.POST("/auth/register", middleware.RequireAdmin(), d.Auth.Register)

	auth.POST("/jobs", d.Job.Create)
	auth.GET("/jobs", d.Job.List)
	auth.GET("/jobs/:id", d.Job.Get)
	auth.PUT("/jobs/:id", d.Job.Update)
	auth.DELETE("/jobs/:id", d.Job.Delete)

	auth.POST("/candidates", d.Candidate.Create)
	auth.GET("/candidates", d.Candidate.List)
	auth.GET("/candidates/:id", d.Candidate.Get)
	auth.PUT("/candidates/:id", d.Candidate.Update)
	auth.DELETE("/candidates/:id", d.Candidate.Delete)
	auth.POST("/candidates/:id/send-link", d.Candidate.SendLink)
	auth.POST("/candidates/:id/resume", d.Candidate.UploadResume)

	auth.GET("/interviews", d.Interview.List)
	auth.GET("/interviews/:id", d.Interview.Get)
	auth.PATCH("/interviews/:id/status", d.Interview.SetStatus)
	auth.GET("/interviews/:id/conversation", d.Conversation.ListByInterview)
	auth.GET("/interviews/:id/analysis", d.Analysis.Get)
	auth.POST("/interviews/:id/analysis/regenerate", d.Analysis.Regenerate)

	// WebSocket
	auth.GET("/ws/interviews/:id/monitor", d.WS.MonitorWS)
}
