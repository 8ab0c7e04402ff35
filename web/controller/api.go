package controller

import (
	"github.com/allblack/allblack-panel/config"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/middleware"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
)

// APIController mounts the JSON API under /panel/api.
type APIController struct {
	BaseController

	settingService service.SettingService
	authService    service.AuthService

	menuController      *MenuController
	orderController     *OrderController
	dashboardController *DashboardController
	userController      *UserAdminController
	settingController   *SettingController
}

// NewAPIController creates a new APIController instance and initializes its routes.
func NewAPIController(g *gin.RouterGroup) *APIController {
	a := &APIController{}
	a.initRouter(g)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup) {
	api := g.Group("/panel/api")
	api.GET("/config", a.clientConfig)

	api.Use(a.checkLogin)
	api.POST("/token", a.issueToken)

	staff := middleware.RoleRequired(model.RoleEmployee, model.RoleAdmin)
	admin := middleware.RoleRequired(model.RoleAdmin)

	a.menuController = NewMenuController(api.Group("/menu"), admin)
	a.orderController = NewOrderController(api, staff, admin)
	a.dashboardController = NewDashboardController(api)
	a.userController = NewUserAdminController(api.Group("/users", admin))
	a.settingController = NewSettingController(api.Group("", admin))
	NewQRCodeController(api.Group("/tables", admin))
}

// clientConfig advertises the polling intervals and enumerations clients
// need before they log in.
func (a *APIController) clientConfig(c *gin.Context) {
	customerPoll, err := a.settingService.GetCustomerPollSeconds()
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	dashboardPoll, err := a.settingService.GetDashboardPollSeconds()
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonObj(c, entity.ClientConfig{
		CustomerPollSeconds:  customerPoll,
		DashboardPollSeconds: dashboardPoll,
		PaymentMethods:       model.PaymentMethods,
		Statuses:             model.OrderStatuses,
		Version:              config.GetVersion(),
	}, nil)
}

func (a *APIController) issueToken(c *gin.Context) {
	token, exp, err := a.authService.IssueToken(a.identity(c))
	if err != nil {
		jsonMsg(c, "", err)
		return
	}
	jsonObj(c, gin.H{"token": token, "expiresAt": exp.Unix()}, nil)
}
