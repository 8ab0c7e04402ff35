package controller

import (
	"errors"

	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	BaseController

	orderService service.OrderService
}

func NewOrderController(g *gin.RouterGroup, staff gin.HandlerFunc, admin gin.HandlerFunc) *OrderController {
	a := &OrderController{}
	a.initRouter(g, staff, admin)
	return a
}

func (a *OrderController) initRouter(g *gin.RouterGroup, staff gin.HandlerFunc, admin gin.HandlerFunc) {
	orders := g.Group("/orders")
	orders.GET("", a.list)
	orders.POST("", a.create)
	orders.GET("/:id", a.get)
	orders.POST("/:id/status", a.updateStatus)
	orders.POST("/:id/hide", staff, a.hide)
	orders.GET("/:id/history", staff, a.history)
	orders.POST("/purge", admin, a.purge)

	g.GET("/stats/today", admin, a.today)
}

// list returns the caller's own orders for customers and the grouped queue
// for staff.
func (a *OrderController) list(c *gin.Context) {
	identity := a.identity(c)
	if identity.Role.IsStaff() {
		groups, err := a.orderService.ListGroupedForStaff(identity)
		jsonObj(c, groups, err)
		return
	}
	orders, err := a.orderService.ListForCustomer(identity.Id)
	jsonObj(c, orders, err)
}

func (a *OrderController) create(c *gin.Context) {
	form := &entity.OrderForm{}
	if err := c.ShouldBindJSON(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	order, err := a.orderService.CreateOrder(a.identity(c), form)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.orders.created", "Number=="+order.Number), order, nil)
}

func (a *OrderController) get(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	order, err := a.orderService.GetOrder(id, a.identity(c))
	jsonObj(c, order, err)
}

func (a *OrderController) updateStatus(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	form := &entity.StatusForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	order, err := a.orderService.UpdateStatus(id, form.Status, a.identity(c))
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.orders.updated", "Number=="+order.Number, "Status=="+string(order.Status)), order, nil)
}

func (a *OrderController) hide(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonMsg(c, I18nWeb(c, "pages.orders.hidden"), a.orderService.Hide(id, a.identity(c)))
}

func (a *OrderController) history(c *gin.Context) {
	id, err := paramId(c)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	logs, err := a.orderService.History(id)
	jsonObj(c, logs, err)
}

type purgeForm struct {
	Confirm bool `json:"confirm" form:"confirm"`
}

func (a *OrderController) purge(c *gin.Context) {
	form := &purgeForm{}
	if err := c.ShouldBind(form); err != nil {
		jsonMsg(c, "", errors.Join(service.ErrValidation, err))
		return
	}
	count, err := a.orderService.PurgeAll(form.Confirm)
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "pages.orders.purged", "Count=="+itoa(count)), gin.H{"deleted": count}, nil)
}

func (a *OrderController) today(c *gin.Context) {
	stats, err := a.orderService.Today()
	jsonObj(c, stats, err)
}
