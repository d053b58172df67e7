package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/interview"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type InterviewHandler struct {
	svc  services.InterviewService
	live *interview.Registry
}

func NewInterviewHandler(svc services.InterviewService, live *interview.Registry) *InterviewHandler {
	return &InterviewHandler{svc: svc, live: live}
}

type CreateInterviewResponse struct {
	InterviewID string                 `json:"interview_id"`
	Status      models.InterviewStatus `json:"status"`
	Role        string                 `json:"role"`
	Language    models.Language        `json:"language"`
	CreatedAt   string                 `json:"created_at"`
}

func (h *InterviewHandler) Create(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	var req services.CreateInterviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Create", "invalid request body", err))
		return
	}

	iv, err := h.svc.Create(c.Request.Context(), caps, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateInterviewResponse{
		InterviewID: iv.InterviewID,
		Status:      iv.Status,
		Role:        iv.Role,
		Language:    iv.Language,
		CreatedAt:   iv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *InterviewHandler) List(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	items, err := h.svc.List(c.Request.Context(), caps)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Get returns the live snapshot while a controller is running, else the
// stored document.
func (h *InterviewHandler) Get(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	iv, err := h.svc.Get(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if ctrl, ok := h.live.Get(iv.InterviewID); ok && !ctrl.Ended() {
		snap := ctrl.Snapshot()
		c.JSON(http.StatusOK, snap)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) End(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	iv, err := h.svc.Get(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if ctrl, ok := h.live.Get(iv.InterviewID); ok {
		ended, err := ctrl.End(c.Request.Context(), models.EndReasonUser)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ended)
		return
	}

	ended, err := h.svc.Abandon(c.Request.Context(), caps, iv.InterviewID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ended)
}
