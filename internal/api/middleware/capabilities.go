package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

type CapabilityResolver interface {
	Resolve(ctx context.Context, user models.User) (models.Capabilities, error)
}

// Capabilities resolves the authenticated identity into models.Capabilities
// once per request. It must run after JWTAuth.
func Capabilities(r CapabilityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "unauthorized",
			})
			return
		}

		caps, err := r.Resolve(c.Request.Context(), models.User{
			ID:    userID,
			Email: c.GetString(CtxEmail),
			Role:  models.UserRole(c.GetString(CtxRole)),
		})
		if err != nil {
			c.AbortWithStatusJSON(utils.HTTPStatus(err), apiError{
				Code:    utils.CodeOf(err),
				Message: "failed to resolve account",
			})
			return
		}

		c.Set(CtxCapabilities, caps)
		c.Next()
	}
}
