package model

import "time"

type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Phone        string    `json:"phone" gorm:"size:32"`
	PasswordHash string    `json:"-" gorm:"column:password_hash"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null"`
	IsEmployee   bool      `json:"isEmployee" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Role() Role {
	switch {
	case u.IsAdmin:
		return RoleAdmin
	case u.IsEmployee:
		return RoleEmployee
	default:
		return RoleCustomer
	}
}

// SetRole sets the flags so that Role() returns r.
func (u *User) SetRole(r Role) {
	u.IsAdmin = r == RoleAdmin
	u.IsEmployee = r == RoleEmployee
}
