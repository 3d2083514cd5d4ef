// Package service holds the business rules behind the HTTP handlers.
package service

import (
	"context"

	"food-ordering-api/cart"
	"food-ordering-api/models"
	"food-ordering-api/store"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User, password string) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	VerifyPassword(u *models.User, password string) bool
	UpdateProfile(ctx context.Context, u *models.User) error
	UpdateNickname(ctx context.Context, id uint, nickname string) error
	UpdatePassword(ctx context.Context, id uint, password string) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uint) error
}

type MenuStore interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id uint) (*models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
	Save(ctx context.Context, item *models.MenuItem) error
	ClearImage(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, from, to models.OrderStatus, actorID uint) error
}

// Carts is the part of the cart service checkout needs.
type Carts interface {
	Snapshot(ctx context.Context, userID uint) (*cart.Cart, error)
	Clear(ctx context.Context, userID uint) error
}

// TokenIssuer signs bearer tokens for a user.
type TokenIssuer interface {
	Issue(u *models.User) (string, error)
}

var (
	_ UserStore  = (*store.UserStore)(nil)
	_ MenuStore  = (*store.MenuStore)(nil)
	_ OrderStore = (*store.OrderStore)(nil)
	_ Carts      = (*cart.Service)(nil)
)
