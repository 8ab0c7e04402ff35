package controller

import (
	"errors"
	"net/http"
	"text/template"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"
	"github.com/allblack/allblack-panel/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username      string     `json:"username" form:"username"`
	Password      string     `json:"password" form:"password"`
	Role          model.Role `json:"role" form:"role"`
	TwoFactorCode string     `json:"twoFactorCode" form:"twoFactorCode"`
}

// SessionInfo tells a client who it is and which screen to show.
type SessionInfo struct {
	LoggedIn bool             `json:"loggedIn"`
	Identity *entity.Identity `json:"identity,omitempty"`
	View     entity.View      `json:"view,omitempty"`
	Views    []entity.View    `json:"views,omitempty"`
}

// IndexController handles login, logout, registration and the current session.
type IndexController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
}

// NewIndexController registers the routes on g. limit guards the credential
// endpoints.
func NewIndexController(g *gin.RouterGroup, limit gin.HandlerFunc) *IndexController {
	a := &IndexController{}
	a.initRouter(g, limit)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup, limit gin.HandlerFunc) {
	g.GET("/session", a.currentSession)
	g.GET("/logout", a.logout)

	g.POST("/login", limit, a.login)
	g.POST("/register", limit, a.register)
	g.POST("/getTwoFactorEnable", a.getTwoFactorEnable)
}

func sessionInfo(identity *entity.Identity) SessionInfo {
	if identity == nil {
		return SessionInfo{Views: entity.LoginViews}
	}
	return SessionInfo{LoggedIn: true, Identity: identity, View: entity.SelectView(identity.Role)}
}

func (a *IndexController) currentSession(c *gin.Context) {
	jsonObj(c, sessionInfo(session.GetLoginUser(c)), nil)
}

func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	if form.Role == "" {
		form.Role = model.RoleCustomer
	}

	user, err := a.userService.Authenticate(form.Username, form.Password, form.Role, form.TwoFactorCode)
	safeUser := template.HTMLEscapeString(form.Username)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warningf("failed %s login for \"%s\", IP: \"%s\"", form.Role, safeUser, getRemoteIp(c))
			msg := I18nWeb(c, "pages.login.invalidCredentials")
			if form.Role == model.RoleCustomer {
				msg = I18nWeb(c, "pages.login.tableNotFound")
			}
			pureJsonMsg(c, http.StatusUnauthorized, false, msg)
			return
		}
		jsonMsg(c, "", err)
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}
	identity := entity.IdentityOf(user)
	session.SetMaxAge(c, sessionMaxAge*60)
	if err := session.SetLoginUser(c, identity); err != nil {
		logger.Warning("Unable to save session:", err)
		jsonMsg(c, "", err)
		return
	}

	logger.Infof("%s logged in as %s, IP: %s", safeUser, identity.Role, getRemoteIp(c))
	jsonMsgObj(c, I18nWeb(c, "pages.login.success"), sessionInfo(&identity), nil)
}

func (a *IndexController) logout(c *gin.Context) {
	if user := session.GetLoginUser(c); user != nil {
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	jsonMsgObj(c, I18nWeb(c, "pages.login.logout"), sessionInfo(nil), nil)
}

// register creates a user with the credentials of an admin given in the
// same form. It does not log the new user in.
func (a *IndexController) register(c *gin.Context) {
	var form entity.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	user, err := a.userService.RegisterPrivileged(&form)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorizedRegistration) {
			logger.Warningf("refused registration of \"%s\" by \"%s\", IP: \"%s\"",
				template.HTMLEscapeString(form.Username), template.HTMLEscapeString(form.AdminUsername), getRemoteIp(c))
		}
		jsonMsg(c, "", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.register.success", "Username=="+user.Username), user, nil)
}

func (a *IndexController) getTwoFactorEnable(c *gin.Context) {
	status, err := a.settingService.GetTwoFactorEnable()
	jsonObj(c, status, err)
}
