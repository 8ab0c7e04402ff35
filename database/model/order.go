package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentPix        PaymentMethod = "pix"
	PaymentCash       PaymentMethod = "dinheiro"
	PaymentCreditCard PaymentMethod = "cartao_credito"
	PaymentDebitCard  PaymentMethod = "cartao_debito"
)

var PaymentMethods = []PaymentMethod{PaymentPix, PaymentCash, PaymentCreditCard, PaymentDebitCard}

func (p PaymentMethod) Valid() bool {
	for _, v := range PaymentMethods {
		if p == v {
			return true
		}
	}
	return false
}

type Order struct {
	Id            int             `json:"id" gorm:"primaryKey;autoIncrement"`
	Uuid          string          `json:"uuid" gorm:"uniqueIndex;size:36;not null"`
	Number        string          `json:"number" gorm:"size:3;index"`
	UserId        int             `json:"userId" gorm:"index;not null"`
	Status        OrderStatus     `json:"status" gorm:"size:16;index;not null"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Hidden        bool            `json:"hidden" gorm:"index;not null"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"size:20"`
	Observations  string          `json:"observations"`
	TableNumber   int             `json:"tableNumber"`
	AssignedTo    *int            `json:"assignedTo"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	User     *User       `json:"user,omitempty" gorm:"foreignKey:UserId"`
	Assignee *User       `json:"assignee,omitempty" gorm:"foreignKey:AssignedTo"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderId"`

	// Actions are the statuses the viewing user may move the order to.
	Actions []OrderStatus `json:"actions,omitempty" gorm:"-"`
}

// OrderNumber folds id into [100, 999] and renders it with three digits.
func OrderNumber(id string) string {
	h := 0
	for _, c := range id {
		h = (h*31 + int(c)) % 1000
	}
	if h < 100 {
		h += 100
	}
	return fmt.Sprintf("%03d", h)
}

type OrderItem struct {
	Id         int             `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderId    int             `json:"orderId" gorm:"index;not null"`
	MenuItemId int             `json:"menuItemId" gorm:"index;not null"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`

	MenuItem *MenuItem `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemId"`
}

// Subtotal is price times quantity.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
