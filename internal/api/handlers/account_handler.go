package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

type AccountHandler struct {
	svc services.AccountService
}

func NewAccountHandler(svc services.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Me(c *gin.Context) {
	caps, ok := requireCaps(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, caps)
}

type SetPlanRequest struct {
	Plan string `json:"plan" binding:"required"`
}

// SetPlan is admin only.
func (h *AccountHandler) SetPlan(c *gin.Context) {
	const op = "AccountHandler.SetPlan"

	var req SetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	userID := c.Param("user_id")
	if err := h.svc.SetPlan(c.Request.Context(), userID, models.Plan(req.Plan)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "plan": req.Plan})
}
