package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/services"
)

type FeedbackHandler struct {
	svc services.FeedbackService
}

func NewFeedbackHandler(svc services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func (h *FeedbackHandler) Get(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	report, err := h.svc.Get(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *FeedbackHandler) Retry(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	report, err := h.svc.Regenerate(c.Request.Context(), caps, c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
