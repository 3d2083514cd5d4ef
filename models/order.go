package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusCancelled,
}

// Valid reports whether s is one of the five order states.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	UserID          uint                `json:"user_id" gorm:"not null;index"`
	User            *User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Status          OrderStatus         `json:"status" gorm:"size:16;not null;default:'Pending'"`
	TotalPrice      decimal.Decimal     `json:"total_price" gorm:"type:decimal(10,2);not null"`
	DeliveryAddress string              `json:"delivery_address" gorm:"size:500"`
	Items           []OrderItem         `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory   []OrderStatusChange `json:"status_history,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null"`
	MenuItem   *MenuItem       `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"` // unit price at order time
	Name       string          `json:"name" gorm:"size:255"`                     // item name at order time
}

// OrderStatusChange is an audit row written with every status update
type OrderStatusChange struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status" gorm:"size:16"`
	ToStatus   OrderStatus `json:"to_status" gorm:"size:16;not null"`
	ChangedBy  uint        `json:"changed_by"`
	CreatedAt  time.Time   `json:"created_at"`
}
