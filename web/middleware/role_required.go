package middleware

import (
	"net/http"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/session"

	"github.com/gin-gonic/gin"
)

// RoleRequired lets the request through only when the logged-in identity has
// one of roles.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		identity := session.GetLoginUser(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "login required"})
			return
		}
		if !allowed[identity.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Msg: "forbidden"})
			return
		}
		c.Next()
	}
}
