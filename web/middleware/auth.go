// Package middleware holds the gin middleware of the panel: authentication,
// role checks and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"
	"github.com/allblack/allblack-panel/web/session"

	"github.com/gin-gonic/gin"
)

// BearerAuth accepts "Authorization: Bearer <jwt>" as an alternative to the
// cookie session. Requests without the header pass through untouched; an
// invalid token is rejected.
func BearerAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "invalid authorization header"})
			return
		}
		identity, err := authService.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "invalid or expired token"})
			return
		}
		session.SetRequestUser(c, identity)
		c.Next()
	}
}
