package entity

import (
	"time"

	"github.com/allblack/allblack-panel/database/model"

	"github.com/shopspring/decimal"
)

// View names the screen a client should show for its identity.
type View string

const (
	ViewAdminDashboard    View = "admin_dashboard"
	ViewEmployeeDashboard View = "employee_dashboard"
	ViewCustomerOrdering  View = "customer_ordering"

	ViewCustomerLogin View = "customer_login"
	ViewEmployeeLogin View = "employee_login"
	ViewAdminLogin    View = "admin_login"
)

// LoginViews are offered to unauthenticated clients.
var LoginViews = []View{ViewCustomerLogin, ViewEmployeeLogin, ViewAdminLogin}

// SelectView picks exactly one dashboard for an authenticated role.
func SelectView(role model.Role) View {
	switch role {
	case model.RoleAdmin:
		return ViewAdminDashboard
	case model.RoleEmployee:
		return ViewEmployeeDashboard
	default:
		return ViewCustomerOrdering
	}
}

// LineItem is one entry of an order being placed.
type LineItem struct {
	MenuItemId int `json:"menuItemId" form:"menuItemId"`
	Quantity   int `json:"quantity" form:"quantity"`
}

type OrderForm struct {
	Items         []LineItem          `json:"items"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Observations  string              `json:"observations"`
}

type StatusForm struct {
	Status model.OrderStatus `json:"status" form:"status"`
}

type MenuItemForm struct {
	Id          int    `json:"id" form:"id"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	ImageUrl    string `json:"imageUrl" form:"imageUrl"`
	Category    string `json:"category" form:"category"`
	NewCategory string `json:"newCategory" form:"newCategory"`
	Active      *bool  `json:"active" form:"active"`
}

// OrderGroup is the staff view of one customer's (table's) visible orders.
type OrderGroup struct {
	UserId   int           `json:"userId"`
	Username string        `json:"username"`
	Orders   []model.Order `json:"orders"`
	Latest   time.Time     `json:"latest"`
}

type ItemSales struct {
	MenuItemId int    `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// DailyStats summarizes the non-cancelled orders of one calendar day.
type DailyStats struct {
	Date         string                    `json:"date"`
	OrderCount   int                       `json:"orderCount"`
	Revenue      decimal.Decimal           `json:"revenue"`
	TopItems     []ItemSales               `json:"topItems"`
	ByStatus     map[model.OrderStatus]int `json:"byStatus"`
	RecentOrders []model.Order             `json:"recentOrders"`
}

// ClientConfig is what dashboards need before their first poll.
type ClientConfig struct {
	CustomerPollSeconds  int                   `json:"customerPollSeconds"`
	DashboardPollSeconds int                   `json:"dashboardPollSeconds"`
	PaymentMethods       []model.PaymentMethod `json:"paymentMethods"`
	Statuses             []model.OrderStatus   `json:"statuses"`
	Version              string                `json:"version"`
}

// RegisterForm creates a user on behalf of an existing admin.
type RegisterForm struct {
	Username        string     `json:"username" form:"username"`
	Phone           string     `json:"phone" form:"phone"`
	Password        string     `json:"password" form:"password"`
	ConfirmPassword string     `json:"confirmPassword" form:"confirmPassword"`
	Role            model.Role `json:"role" form:"role"`
	AdminUsername   string     `json:"adminUsername" form:"adminUsername"`
	AdminPassword   string     `json:"adminPassword" form:"adminPassword"`
}

// UserForm is the admin panel's create-user form.
type UserForm struct {
	Username string     `json:"username" form:"username"`
	Phone    string     `json:"phone" form:"phone"`
	Password string     `json:"password" form:"password"`
	Role     model.Role `json:"role" form:"role"`
}

// Identity is the role-tagged record kept in the session for a logged-in
// user. It is what services receive as the acting user.
type Identity struct {
	Id       int        `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

func IdentityOf(u *model.User) Identity {
	return Identity{Id: u.Id, Username: u.Username, Role: u.Role()}
}
