package controller

import (
	"errors"

	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	menuService service.MenuService
}

func NewMenuController(g *gin.RouterGroup, admin gin.HandlerFunc) *MenuController {
	a := &MenuController{}
	a.initRouter(g, admin)
	return a
}

func (a *MenuController) initRouter(g *gin.RouterGroup, admin gin.HandlerFunc) {
	g.GET("", a.listActive)
	g.GET("/categories", a.categories)

	g.GET("/all", admin, a.listAll)
	g.POST("/save", admin, a.save)
	g.POST("/:id/active", admin, a.setActive)
	g.POST("/:id/del", admin, a.delete)
}

func (a *MenuController) listActive(c *gin.Context) {
	items, err := a.menuService.ListActiveItems(c.Query("category"), c.Query("q"))
	jsonObj(c, items, err)
}

func (a *MenuController) categories(c *gin.Context) {
	categories, err := a.menuService.Categories()
	jsonObj(c, categories, err)
}

func (a *MenuController) listAll(c *gin.Context) {
	items, categories, err := a.menuService.ListAllItems()
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonObj(c, gin.H{"items": items, "categories": categories}, nil)
}

func (a *MenuController) save(c *gin.Context) {
	form := &entity.MenuItemForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	item, err := a.menuService.UpsertItem(form)
	jsonMsgObj(c, I18nWeb(c, "pages.menu.saved"), item, err)
}

type activeForm struct {
	Active bool `json:"active" form:"active"`
}

func (a *MenuController) setActive(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	form := &activeForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.menu.toggled"), a.menuService.SetActive(id, form.Active))
}

func (a *MenuController) delete(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.menu.deleted"), a.menuService.DeleteItem(id))
}
