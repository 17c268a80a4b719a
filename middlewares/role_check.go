package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bierdeckel/bierdeckel-api/utils"
)

// RestaurantScope lets a request through only when the token belongs to the
// restaurant named by the given path parameter.
func RestaurantScope(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, utils.ErrTokenMissing)
			c.Abort()
			return
		}
		if claims.RestaurantID != c.Param(param) {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("no access to restaurant %s", c.Param(param)))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RoleCheck requires one of the given roles.
func RoleCheck(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, utils.ErrTokenMissing)
			c.Abort()
			return
		}
		if !allowed[claims.Role] {
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("role %s may not do this", claims.Role))
			c.Abort()
			return
		}
		c.Next()
	}
}
