// Package controller provides the HTTP handlers of the allblack panel. Every
// handler answers with the entity.Msg envelope.
package controller

import (
	"errors"
	"net/http"

	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/locale"
	"github.com/allblack/allblack-panel/web/service"
	"github.com/allblack/allblack-panel/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct {
	userService service.UserService
}

// checkLogin aborts with 401 unless the request carries a session or a
// bearer token whose user still exists. The role is reloaded from the users
// table, so a deleted or demoted user loses access on the next request.
func (a *BaseController) checkLogin(c *gin.Context) {
	stored := session.GetLoginUser(c)
	if stored == nil {
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
		c.Abort()
		return
	}
	user, err := a.userService.GetUser(stored.Id)
	if err == nil && user.Username != stored.Username {
		err = service.ErrNotFound
	}
	if errors.Is(err, service.ErrNotFound) {
		logger.Infof("session of removed user %s rejected", stored.Username)
		if err := session.ClearSession(c); err != nil {
			logger.Warning("Unable to clear session:", err)
		}
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
		c.Abort()
		return
	}
	if err != nil {
		jsonMsg(c, "", err)
		c.Abort()
		return
	}
	session.SetRequestUser(c, entity.IdentityOf(user))
	c.Next()
}

// identity returns the logged-in identity. Only call it behind checkLogin.
func (a *BaseController) identity(c *gin.Context) entity.Identity {
	if identity := session.GetLoginUser(c); identity != nil {
		return *identity
	}
	return entity.Identity{}
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	if f, ok := c.Get("I18n"); ok {
		if i18nFunc, ok := f.(locale.I18nFunc); ok {
			return i18nFunc(name, params...)
		}
	}
	return name
}
