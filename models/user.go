package models

import (
	"time"
)

// Role defines the fixed set of account roles
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Nickname        string    `json:"nickname" gorm:"size:100;not null"`
	Email           string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash    string    `json:"-" gorm:"column:password;size:255;not null"`
	Role            Role      `json:"role" gorm:"size:16;not null;default:'CUSTOMER'"`
	DeliveryAddress *string   `json:"delivery_address" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Address returns the stored delivery address or an empty string.
func (u *User) Address() string {
	if u.DeliveryAddress == nil {
		return ""
	}
	return *u.DeliveryAddress
}
