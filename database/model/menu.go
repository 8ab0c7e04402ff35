package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCategory = "hamburguer"

type MenuItem struct {
	Id          int             `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" form:"name" gorm:"size:120;not null"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price" form:"price" gorm:"type:decimal(10,2);not null"`
	ImageUrl    string          `json:"imageUrl" form:"imageUrl"`
	Category    string          `json:"category" form:"category" gorm:"size:60;index;not null"`
	Active      bool            `json:"active" form:"active" gorm:"index;not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
