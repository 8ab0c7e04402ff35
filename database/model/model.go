// Package model holds the gorm models persisted by the allblack panel.
package model

import "time"

// Role is derived from the user flags: admin > employee > customer.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role works the order queue.
func (r Role) IsStaff() bool {
	return r == RoleEmployee || r == RoleAdmin
}

type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key" gorm:"uniqueIndex;size:64"`
	Value string `json:"value" form:"value"`
}

// OrderStatusLog records every status change of an order.
type OrderStatusLog struct {
	Id        int         `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderId   int         `json:"orderId" gorm:"index;not null"`
	OldStatus OrderStatus `json:"oldStatus" gorm:"size:16"`
	NewStatus OrderStatus `json:"newStatus" gorm:"size:16;not null"`
	ChangedBy string      `json:"changedBy" gorm:"size:64"`
	ChangedAt time.Time   `json:"changedAt" gorm:"index"`
}
