package controller

import (
	"errors"

	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
)

// UserAdminController is the admin-only user management API.
type UserAdminController struct {
	BaseController

	userAdminService service.UserAdminService
}

func NewUserAdminController(g *gin.RouterGroup) *UserAdminController {
	a := &UserAdminController{}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	g.GET("", a.list)
	g.POST("", a.create)
	g.POST("/:id/admin", a.toggleAdmin)
	g.POST("/:id/password", a.resetPassword)
	g.POST("/:id/del", a.delete)
}

func (a *UserAdminController) list(c *gin.Context) {
	users, err := a.userAdminService.ListUsers()
	jsonObj(c, users, err)
}

func (a *UserAdminController) create(c *gin.Context) {
	form := &entity.UserForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	user, err := a.userAdminService.CreateUser(form)
	jsonMsgObj(c, I18nWeb(c, "pages.users.created"), user, err)
}

func (a *UserAdminController) toggleAdmin(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	user, err := a.userAdminService.ToggleAdmin(a.identity(c), id)
	jsonMsgObj(c, I18nWeb(c, "pages.users.updated"), user, err)
}

type passwordForm struct {
	Password string `json:"password" form:"password"`
}

func (a *UserAdminController) resetPassword(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	form := &passwordForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.users.passwordReset"), a.userAdminService.ResetPassword(id, form.Password))
}

func (a *UserAdminController) delete(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.users.deleted"), a.userAdminService.DeleteUser(a.identity(c), id))
}
