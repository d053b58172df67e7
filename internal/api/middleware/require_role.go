package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/utils"
)

func RequireRole(allowed ...string) gin.HandlerFunc {
	allow := map[string]struct{}{}
	for _, a := range allowed {
		a = strings.TrimSpace(strings.ToLower(a))
		if a != "" {
			allow[a] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		role, ok := currentRole(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    utils.CodeForbidden,
				"message": "forbidden",
			})
			return
		}

		if _, ok := allow[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    utils.CodeForbidden,
				"message": "forbidden",
			})
			return
		}

		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(string(models.RoleAdmin)) }

// currentRole prefers the resolved capabilities over the raw token role, so
// admins configured by email or plan pass role checks too.
func currentRole(c *gin.Context) (string, bool) {
	if v, ok := c.Get(CtxCapabilities); ok {
		if caps, ok := v.(models.Capabilities); ok && caps.Role != "" {
			return string(caps.Role), true
		}
	}
	v, ok := c.Get(CtxRole)
	role, _ := v.(string)
	return strings.ToLower(strings.TrimSpace(role)), ok
}
