package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type TemplateHandler struct {
	svc services.TemplateService
}

func NewTemplateHandler(svc services.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

func (h *TemplateHandler) List(c *gin.Context) {
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

func (h *TemplateHandler) Create(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	var req services.CreateTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "TemplateHandler.Create", "invalid request body", err))
		return
	}

	t, err := h.svc.Create(c.Request.Context(), caps, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caps, c.Param("template_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
