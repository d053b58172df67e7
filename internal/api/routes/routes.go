package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/api/handlers"
	"github.com/yoockh/yoointerview/internal/api/middleware"
)

type Deps struct {
	JWT          middleware.JWTConfig
	Capabilities middleware.CapabilityResolver

	Account    *handlers.AccountHandler
	Template   *handlers.TemplateHandler
	Interview  *handlers.InterviewHandler
	Transcript *handlers.TranscriptHandler
	Feedback   *handlers.FeedbackHandler
	WS         *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT), middleware.Capabilities(d.Capabilities))

	auth.GET("/me", d.Account.Me)

	auth.GET("/templates", d.Template.List)
	auth.POST("/templates", d.Template.Create)
	auth.DELETE("/templates/:template_id", d.Template.Delete)

	auth.POST("/interviews", d.Interview.Create)
	auth.GET("/interviews", d.Interview.List)
	auth.GET("/interviews/:interview_id", d.Interview.Get)
	auth.POST("/interviews/:interview_id/end", d.Interview.End)

	auth.GET("/interviews/:interview_id/transcript", d.Transcript.List)
	auth.GET("/interviews/:interview_id/transcript/download", d.Transcript.Download)

	auth.GET("/interviews/:interview_id/feedback", d.Feedback.Get)
	auth.POST("/interviews/:interview_id/feedback/retry", d.Feedback.Retry)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.PUT("/accounts/:user_id/plan", d.Account.SetPlan)

	// WebSocket
	auth.GET("/ws/interviews/:interview_id", d.WS.InterviewWS)
}
