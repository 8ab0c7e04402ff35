package controller

import (
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"
	"github.com/allblack/allblack-panel/web/service"

	"github.com/gin-gonic/gin"
)

// Dashboard is the payload of the screen chosen for the caller's role. Only
// the fields of that screen are set.
type Dashboard struct {
	View entity.View `json:"view"`

	Identity   entity.Identity     `json:"identity"`
	Stats      *entity.DailyStats  `json:"stats,omitempty"`
	Queue      []entity.OrderGroup `json:"queue,omitempty"`
	Menu       []model.MenuItem    `json:"menu,omitempty"`
	Categories []string            `json:"categories,omitempty"`
	Orders     []model.Order       `json:"orders,omitempty"`
}

type DashboardController struct {
	BaseController

	orderService service.OrderService
	menuService  service.MenuService
}

func NewDashboardController(g *gin.RouterGroup) *DashboardController {
	a := &DashboardController{}
	a.initRouter(g)
	return a
}

func (a *DashboardController) initRouter(g *gin.RouterGroup) {
	g.GET("/dashboard", a.dashboard)
}

func (a *DashboardController) dashboard(c *gin.Context) {
	d, err := a.build(a.identity(c))
	jsonObj(c, d, err)
}

func (a *DashboardController) build(identity entity.Identity) (*Dashboard, error) {
	d := &Dashboard{View: entity.SelectView(identity.Role), Identity: identity}
	var err error
	switch d.View {
	case entity.ViewAdminDashboard:
		stats, err := a.orderService.Today()
		if err != nil {
			return nil, err
		}
		d.Stats = &stats
		if d.Menu, d.Categories, err = a.menuService.ListAllItems(); err != nil {
			return nil, err
		}
	case entity.ViewEmployeeDashboard:
		if d.Queue, err = a.orderService.ListGroupedForStaff(identity); err != nil {
			return nil, err
		}
	default:
		if d.Menu, err = a.menuService.ListActiveItems("", ""); err != nil {
			return nil, err
		}
		if d.Categories, err = a.menuService.Categories(); err != nil {
			return nil, err
		}
		if d.Orders, err = a.orderService.ListForCustomer(identity.Id); err != nil {
			return nil, err
		}
	}
	return d, nil
}
