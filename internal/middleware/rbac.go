package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	appErrors "github.com/noah-isme/tutoring-scheduler/pkg/errors"
	"github.com/noah-isme/tutoring-scheduler/pkg/response"
)

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...models.Role) gin.HandlerFunc {
	allowedRoles := make(map[models.Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedRoles[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
