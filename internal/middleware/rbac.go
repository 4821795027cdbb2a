package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/response"
)

// RequireRoles enforces role-based access control for dashboard routes.
func RequireRoles(roles ...models.MemberRole) gin.HandlerFunc {
	allowed := make(map[models.MemberRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextMemberKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
